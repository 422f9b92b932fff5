package mp4

// extractChapters reads each sample of a chapters track as a 16-bit
// length-prefixed UTF-8 string, grounded on the chapter-building block in
// mp4_demux_build_tracks. Entries beyond maxChapters are dropped; a short
// or malformed sample is skipped rather than aborting the whole movie.
func extractChapters(r *Reader, track *Track, maxChapters int) ([]Chapter, error) {
	var chapters []Chapter
	for i := 0; i < track.SampleCount() && len(chapters) < maxChapters; i++ {
		size := track.SampleSize[i]
		if size < 2 {
			continue
		}
		raw, err := r.ReadAt(track.SampleOffset[i], int(size))
		if err != nil {
			return nil, err
		}
		nameLen := int(be.Uint16(raw[:2]))
		if nameLen > len(raw)-2 {
			continue
		}
		name := string(raw[2 : 2+nameLen])
		timestampUs := roundedTimescaleConvert(track.SampleDecodingTime[i], track.Timescale)
		chapters = append(chapters, Chapter{
			Index:       len(chapters),
			Name:        name,
			TimestampUs: timestampUs,
		})
	}
	return chapters, nil
}

// roundedTimescaleConvert converts a value expressed in timescale units to
// microseconds, rounding to the nearest microsecond (half-up), exactly as
// the original's "(t * 1000000 + timescale/2) / timescale" expression.
func roundedTimescaleConvert(t uint64, timescale uint32) uint64 {
	if timescale == 0 {
		return 0
	}
	return (t*1_000_000 + uint64(timescale)/2) / uint64(timescale)
}
