package mp4

// parseStsd parses a "stsd" box's entry_count and each sample entry,
// grounded on mp4_demux_parse_stsd. Only the video (avc1) sample entry is
// interpreted in depth, since Track.Codec only distinguishes CodecAVC from
// CodecUnknown; other sample entry types are skipped whole here, once their
// size and type have been read.
func parseStsd(r *Reader, h BoxHeader, t *Track) error {
	if h.Payload < 4 {
		return newErr(MalformedSize, h.Type, h.Offset, "stsd too small: %d", h.Payload)
	}
	entryCount, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	for i := uint32(0); i < entryCount; i++ {
		entryStart := r.CurrentOffset()
		if r.Remaining() < 8 {
			return newErr(MalformedSize, h.Type, h.Offset, "stsd entry %d truncated", i)
		}
		size, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		var entryType BoxType
		raw, err := r.ReadExact(4)
		if err != nil {
			return err
		}
		copy(entryType[:], raw)

		if entryType == TypeAvc1 && t.Type == TrackVideo {
			if err := parseVisualSampleEntry(r, t, entryStart, int64(size)); err != nil {
				return err
			}
		}
		consumed := r.CurrentOffset() - entryStart
		if err := r.Skip(int64(size) - consumed); err != nil {
			return err
		}
	}
	return nil
}

// parseVisualSampleEntry reads an avc1 sample entry's fixed 78-byte header
// (width/height, the rest unused by this demuxer) and then its child
// "avcC" box, from which parseAvcC keeps the first SPS and first PPS.
func parseVisualSampleEntry(r *Reader, t *Track, entryStart, entrySize int64) error {
	// 4(size)+4(type) already consumed. Fixed fields up to and including
	// width/height, per ISO/IEC 14496-12 VisualSampleEntry:
	//   reserved[6] + data_reference_index(2) + pre_defined(2) + reserved(2)
	//   + pre_defined[3*4] + width(2) + height(2) = 6+2+2+2+12+2+2 = 28
	if _, err := r.ReadExact(6); err != nil { // reserved
		return err
	}
	if _, err := r.ReadU16BE(); err != nil { // data_reference_index
		return err
	}
	if _, err := r.ReadExact(16); err != nil { // pre_defined, reserved, pre_defined[3]
		return err
	}
	width, err := r.ReadU16BE()
	if err != nil {
		return err
	}
	height, err := r.ReadU16BE()
	if err != nil {
		return err
	}
	t.Width, t.Height = uint32(width), uint32(height)

	// horizresolution(4)+vertresolution(4)+reserved(4)+frame_count(2)
	// +compressorname(32)+depth(2)+pre_defined(2) = 50
	if _, err := r.ReadExact(50); err != nil {
		return err
	}

	consumed := r.CurrentOffset() - entryStart
	remaining := entrySize - consumed
	return walkContainer(r, remaining, func(ch BoxHeader) error {
		if ch.Type != TypeAvcC {
			return nil
		}
		return parseAvcC(r, ch, t)
	})
}

// parseAvcC parses an "avcC" AVCDecoderConfigurationRecord, keeping only
// the first SPS and first PPS verbatim and skipping the rest, grounded on
// mp4_demux_parse_avcc. length_size (the NAL length-prefix width used by
// per-sample payloads, out of scope for this demuxer) is parsed only to
// keep the cursor aligned with the sps_count byte that follows it.
func parseAvcC(r *Reader, h BoxHeader, t *Track) error {
	if h.Payload < 6 {
		return newErr(MalformedSize, h.Type, h.Offset, "avcC too small: %d", h.Payload)
	}
	// configuration_version(1) + AVCProfileIndication(1)
	// + profile_compatibility(1) + AVCLevelIndication(1)
	if _, err := r.ReadExact(4); err != nil {
		return err
	}
	// 6 reserved bits + 2-bit lengthSizeMinusOne, 3 reserved bits + 5-bit
	// numOfSequenceParameterSets
	lengthAndSpsCount, err := r.ReadU16BE()
	if err != nil {
		return err
	}
	spsCount := int(lengthAndSpsCount & 0x1f)

	consumed := int64(6)
	for i := 0; i < spsCount; i++ {
		if consumed+2 > h.Payload {
			return newErr(MalformedSize, h.Type, h.Offset, "avcC sps table overruns box")
		}
		spsLen, err := r.ReadU16BE()
		if err != nil {
			return err
		}
		consumed += 2
		if consumed+int64(spsLen) > h.Payload {
			return newErr(MalformedSize, h.Type, h.Offset, "avcC sps %d overruns box", i)
		}
		sps, err := r.ReadExact(int(spsLen))
		if err != nil {
			return err
		}
		consumed += int64(spsLen)
		if t.VideoSps == nil && spsLen > 0 {
			t.VideoSps = sps
		}
	}

	if consumed+1 > h.Payload {
		return newErr(MalformedSize, h.Type, h.Offset, "avcC missing pps_count")
	}
	ppsCount, err := r.ReadU8()
	if err != nil {
		return err
	}
	consumed++

	for i := 0; i < int(ppsCount); i++ {
		if consumed+2 > h.Payload {
			return newErr(MalformedSize, h.Type, h.Offset, "avcC pps table overruns box")
		}
		ppsLen, err := r.ReadU16BE()
		if err != nil {
			return err
		}
		consumed += 2
		if consumed+int64(ppsLen) > h.Payload {
			return newErr(MalformedSize, h.Type, h.Offset, "avcC pps %d overruns box", i)
		}
		pps, err := r.ReadExact(int(ppsLen))
		if err != nil {
			return err
		}
		consumed += int64(ppsLen)
		if t.VideoPps == nil && ppsLen > 0 {
			t.VideoPps = pps
		}
	}

	t.Codec = CodecAVC
	return nil
}
