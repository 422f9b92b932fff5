package mp4

// Sample is one demuxed access unit's metadata, returned by NextSample.
// Payload bytes are written into the caller-supplied sampleBuf/metaBuf
// rather than carried on this struct, matching
// mp4_demux_get_track_next_sample's caller-owns-the-buffer contract.
type Sample struct {
	TrackIndex               int
	SampleIndex              int // 0-based position within the track's sample index
	SampleSize               uint32
	MetadataSize             uint32 // size of the linked metadata track's sample at this index, 0 if none
	DecodingTimeUs           uint64
	NextSampleDecodingTimeUs uint64 // 0 if this is the track's last sample
	IsSync                   bool
}

// isSyncSample reports whether the 0-based sampleIndex is a sync sample,
// grounded on mp4_demux_is_sync_sample: a nil SyncSamples table (no stss
// box present) means every sample is a sync sample; otherwise sampleIndex+1
// (stss entries are 1-based) must appear in the ascending table.
func (t *Track) isSyncSample(sampleIndex int) bool {
	if t.SyncSamples == nil {
		return true
	}
	target := uint32(sampleIndex + 1)
	lo, hi := 0, len(t.SyncSamples)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.SyncSamples[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(t.SyncSamples) && t.SyncSamples[lo] == target
}

// prevSyncSample returns the largest 0-based sample index <= i that is a
// sync sample, or -1 if none exists. Grounded on the prevSync out-parameter
// of mp4_demux_is_sync_sample, used by Seek's require_sync fallback.
func (t *Track) prevSyncSample(i int) int {
	if t.SyncSamples == nil {
		return i
	}
	target := uint32(i + 1)
	lo, hi := 0, len(t.SyncSamples)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.SyncSamples[mid] <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return -1
	}
	return int(t.SyncSamples[lo-1]) - 1
}

// NextSample returns metadata about the track's next sample, identified by
// trackID, and advances its cursor, grounded on
// mp4_demux_get_track_next_sample. It fails with NotFound if no track has
// that ID. If sampleBuf is non-nil, the sample's bytes are copied into it,
// failing with BufferTooSmall if it is smaller than the reported
// SampleSize; if sampleBuf is nil, only the size is reported. metaBuf
// behaves the same way for a linked metadata track's co-indexed sample,
// when the returned Sample's MetadataSize is nonzero. Once the track is
// exhausted, NextSample returns a zero-valued Sample without reading,
// erroring, or advancing further.
func (m *Movie) NextSample(r *Reader, trackID uint32, sampleBuf, metaBuf []byte) (Sample, error) {
	t := m.TrackByID(trackID)
	if t == nil {
		return Sample{}, newErr(NotFound, BoxType{}, 0, "no track with id %d", trackID)
	}
	if t.currentSample >= t.SampleCount() {
		return Sample{}, nil
	}

	idx := t.currentSample
	s := Sample{
		TrackIndex:     t.Index,
		SampleIndex:    idx,
		SampleSize:     t.SampleSize[idx],
		DecodingTimeUs: roundedTimescaleConvert(t.SampleDecodingTime[idx], t.Timescale),
		IsSync:         t.isSyncSample(idx),
	}
	if idx+1 < t.SampleCount() {
		s.NextSampleDecodingTimeUs = roundedTimescaleConvert(t.SampleDecodingTime[idx+1], t.Timescale)
	}

	if sampleBuf != nil {
		if uint32(len(sampleBuf)) < s.SampleSize {
			return Sample{}, newErr(BufferTooSmall, BoxType{}, t.SampleOffset[idx], "sample buffer has %d bytes, need %d", len(sampleBuf), s.SampleSize)
		}
		data, err := r.ReadAt(t.SampleOffset[idx], int(s.SampleSize))
		if err != nil {
			return Sample{}, err
		}
		copy(sampleBuf, data)
	}

	if t.MetadataTrackIndex >= 0 {
		meta := m.Tracks[t.MetadataTrackIndex]
		if idx < meta.SampleCount() {
			s.MetadataSize = meta.SampleSize[idx]
			if metaBuf != nil {
				if uint32(len(metaBuf)) < s.MetadataSize {
					return Sample{}, newErr(BufferTooSmall, BoxType{}, meta.SampleOffset[idx], "metadata buffer has %d bytes, need %d", len(metaBuf), s.MetadataSize)
				}
				data, err := r.ReadAt(meta.SampleOffset[idx], int(s.MetadataSize))
				if err != nil {
					return Sample{}, err
				}
				copy(metaBuf, data)
			}
		}
	}

	t.currentSample++
	return s, nil
}

// Seek repositions the sample cursor of every track to its sample at or
// before timeUs, grounded on mp4_demux_seek. Chapters tracks, and metadata
// tracks that follow a reference track (per linkTracks), are skipped: their
// cursor tracks whatever their reference track's Seek did instead. If
// requireSync is true and the nearest-preceding sample isn't a sync sample,
// Seek falls back to the nearest earlier sync sample via the track's
// SyncSamples table. If a track has no sample at or before timeUs (and, when
// requireSync is true, no earlier sync sample either), Seek fails with
// NotFound; tracks already processed earlier in Movie.Tracks order keep
// whatever cursor they were given, matching the original's no-rollback
// behavior. When a track has a linked metadata track whose sample at the
// found index shares its decoding time, that metadata track's cursor is
// synced too; otherwise a warning is logged, not an error.
func (m *Movie) Seek(log logEntry, timeUs uint64, requireSync bool) error {
	for _, t := range m.Tracks {
		if t.Type == TrackChapters {
			continue
		}
		if t.Type == TrackMetadata && t.followsTrackIndex >= 0 {
			continue
		}

		n := t.SampleCount()
		if n == 0 {
			t.currentSample = 0
			continue
		}

		targetTs := scaleFromUs(timeUs, t.Timescale)

		var start int
		if t.Duration > 0 {
			start = int((uint64(n)*targetTs + t.Duration - 1) / t.Duration)
		}
		if start < 0 {
			start = 0
		}
		if start >= n {
			start = n - 1
		}
		for start < n && t.SampleDecodingTime[start] < targetTs {
			start++
		}
		if start >= n {
			start = n - 1
		}

		found := -1
		for i := start; i >= 0; i-- {
			if t.SampleDecodingTime[i] <= targetTs {
				found = i
				break
			}
		}
		if found < 0 {
			return newErr(NotFound, BoxType{}, 0, "seek: no sample at or before the target time in track %d", t.TrackID)
		}

		if requireSync && !t.isSyncSample(found) {
			prev := t.prevSyncSample(found)
			if prev < 0 {
				return newErr(NotFound, BoxType{}, 0, "seek: no sync sample at or before the target time in track %d", t.TrackID)
			}
			found = prev
		}
		t.currentSample = found

		if t.MetadataTrackIndex >= 0 {
			meta := m.Tracks[t.MetadataTrackIndex]
			if found < meta.SampleCount() && meta.SampleDecodingTime[found] == t.SampleDecodingTime[found] {
				meta.currentSample = found
			} else {
				log.Warn("seek: failed to sync linked metadata track's cursor")
			}
		}
	}
	return nil
}

// scaleFromUs converts microseconds to the track's own timescale units,
// the inverse of roundedTimescaleConvert, with the same half-up rounding.
func scaleFromUs(us uint64, timescale uint32) uint64 {
	if timescale == 0 {
		return 0
	}
	return (us*uint64(timescale) + 500_000) / 1_000_000
}
