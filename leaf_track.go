package mp4

var (
	handlerVideo    = newBoxType("vide")
	handlerAudio    = newBoxType("soun")
	handlerHint     = newBoxType("hint")
	handlerMetadata = newBoxType("meta")
	handlerText     = newBoxType("text")
	refChap         = newBoxType("chap")
	refCdsc         = newBoxType("cdsc")
)

// parseTkhd reads a track header, grounded on mp4_demux_parse_tkhd.
func parseTkhd(r *Reader, h BoxHeader, t *Track) error {
	if h.Version == 1 {
		if h.Payload < 24*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "tkhd v1 too small: %d", h.Payload)
		}
		if _, err := r.ReadExact(16); err != nil { // creation+modification time
			return err
		}
		trackID, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		t.TrackID = trackID
		if _, err := r.ReadU32BE(); err != nil { // reserved
			return err
		}
		if _, err := r.ReadU64BE(); err != nil { // duration
			return err
		}
	} else {
		if h.Payload < 21*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "tkhd v0 too small: %d", h.Payload)
		}
		if _, err := r.ReadExact(8); err != nil {
			return err
		}
		trackID, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		t.TrackID = trackID
		if _, err := r.ReadU32BE(); err != nil { // reserved
			return err
		}
		if _, err := r.ReadU32BE(); err != nil { // duration
			return err
		}
	}

	// reserved(8) + layer/alternate_group(4) + volume/reserved(4) + matrix(36)
	if _, err := r.ReadExact(8 + 4 + 4 + 36); err != nil {
		return err
	}
	width, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	height, err := r.ReadU32BE()
	if err != nil {
		return err
	}
	// Width/height here are 16.16 fixed point; for video tracks, the stsd
	// avc1 sample entry's integer width/height (set in leaf_stsd.go) takes
	// precedence if both are present, matching the original's preference
	// for pixel-accurate dimensions over presentation dimensions.
	if t.Width == 0 {
		t.Width = width >> 16
	}
	if t.Height == 0 {
		t.Height = height >> 16
	}
	return nil
}

// parseTref reads only the first reference entry of a track reference
// box, matching the original's documented single-reference shortcut (see
// DESIGN.md, Open Question 4): a tref with multiple track_id entries for
// the same reference type has all but the first silently ignored.
func parseTref(r *Reader, h BoxHeader, t *Track) error {
	return walkContainer(r, h.Payload, func(ch BoxHeader) error {
		if ch.Payload < 4 {
			return newErr(MalformedSize, ch.Type, ch.Offset, "tref entry too small: %d", ch.Payload)
		}
		trackID, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		if t.RefTrackID != 0 {
			return nil // a reference was already recorded; see doc comment above
		}
		t.RefTrackID = trackID
		switch ch.Type {
		case refChap:
			t.RefKind = RefChapters
		case refCdsc:
			t.RefKind = RefMetadata
		default:
			t.RefKind = RefNone
		}
		return nil
	})
}

// parseMdhd reads a media header, grounded on mp4_demux_parse_mdhd.
func parseMdhd(r *Reader, h BoxHeader, t *Track) error {
	if h.Version == 1 {
		if h.Payload < 9*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "mdhd v1 too small: %d", h.Payload)
		}
		creation, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		modification, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		timescale, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		duration, err := r.ReadU64BE()
		if err != nil {
			return err
		}
		t.CreationUs = macToUnixSeconds(creation) * 1_000_000
		t.ModifiedUs = macToUnixSeconds(modification) * 1_000_000
		t.Timescale = timescale
		t.Duration = duration
	} else {
		if h.Payload < 6*4-4 {
			return newErr(MalformedSize, h.Type, h.Offset, "mdhd v0 too small: %d", h.Payload)
		}
		creation, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		modification, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		timescale, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		duration, err := r.ReadU32BE()
		if err != nil {
			return err
		}
		t.CreationUs = macToUnixSeconds(uint64(creation)) * 1_000_000
		t.ModifiedUs = macToUnixSeconds(uint64(modification)) * 1_000_000
		t.Timescale = timescale
		t.Duration = uint64(duration)
	}
	// language(2) + pre_defined(2)
	if _, err := r.ReadExact(4); err != nil {
		return err
	}
	return nil
}

// parseHdlr reads a handler box, classifying the track's type when nested
// directly under mdia (hdlr boxes also appear under meta, where they carry
// no track-type meaning and are ignored here).
func parseHdlr(r *Reader, h BoxHeader, t *Track) error {
	if h.Payload < 6*4 {
		return newErr(MalformedSize, h.Type, h.Offset, "hdlr too small: %d", h.Payload)
	}
	if _, err := r.ReadU32BE(); err != nil { // pre_defined
		return err
	}
	raw, err := r.ReadExact(4)
	if err != nil {
		return err
	}
	var handlerType BoxType
	copy(handlerType[:], raw)

	switch handlerType {
	case handlerVideo:
		t.Type = TrackVideo
	case handlerAudio:
		t.Type = TrackAudio
	case handlerHint:
		t.Type = TrackHint
	case handlerMetadata:
		t.Type = TrackMetadata
	case handlerText:
		// A text handler is just a text track; linkTracks reclassifies it
		// to TrackChapters only if it's the target of a "chap" tref.
		t.Type = TrackText
	default:
		t.Type = TrackUnknown
	}

	if _, err := r.ReadExact(12); err != nil { // reserved[3]
		return err
	}

	// name is a NUL-terminated (or box-end-terminated) string; read
	// whatever remains of the box and trim at the first NUL, rather than
	// the original's fixed 100-byte buffer with its off-by-one terminator
	// write (see DESIGN.md, Open Question 2).
	remaining := h.Payload - (4 + 4 + 12)
	if remaining > 0 {
		raw, err := r.ReadExact(int(remaining))
		if err != nil {
			return err
		}
		end := len(raw)
		for i, b := range raw {
			if b == 0 {
				end = i
				break
			}
		}
		t.HandlerName = string(raw[:end])
	}
	return nil
}
