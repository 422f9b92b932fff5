package mp4

// sttsEntry is one (sample_count, sample_delta) pair from a "stts" box.
type sttsEntry struct {
	SampleCount uint32
	SampleDelta uint32
}

// stscEntry is one (first_chunk, samples_per_chunk, sample_description_index)
// entry from an "stsc" box.
type stscEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
}

// stszResult is the decoded form of a "stsz" box: either a single constant
// sample size (Constant>0, Sizes nil) or a per-sample size vector.
type stszResult struct {
	SampleCount uint32
	Constant    uint32
	Sizes       []uint32 // len == SampleCount when Constant == 0
}

func parseStts(r *Reader, h BoxHeader) ([]sttsEntry, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stts too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	if int64(count)*8 > h.Payload-4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stts entry_count %d exceeds box size", count)
	}
	entries := make([]sttsEntry, count)
	for i := range entries {
		sc, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		sd, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		entries[i] = sttsEntry{SampleCount: sc, SampleDelta: sd}
	}
	return entries, nil
}

func parseStss(r *Reader, h BoxHeader) ([]uint32, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stss too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	if int64(count)*4 > h.Payload-4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stss entry_count %d exceeds box size", count)
	}
	entries := make([]uint32, count)
	for i := range entries {
		v, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		entries[i] = v
	}
	return entries, nil
}

func parseStsz(r *Reader, h BoxHeader) (stszResult, error) {
	if h.Payload < 8 {
		return stszResult{}, newErr(MalformedSize, h.Type, h.Offset, "stsz too small: %d", h.Payload)
	}
	sampleSize, err := r.ReadU32BE()
	if err != nil {
		return stszResult{}, err
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return stszResult{}, err
	}
	res := stszResult{SampleCount: count}
	if sampleSize != 0 {
		res.Constant = sampleSize
		return res, nil
	}
	if int64(count)*4 > h.Payload-8 {
		return stszResult{}, newErr(MalformedSize, h.Type, h.Offset, "stsz sample_count %d exceeds box size", count)
	}
	sizes := make([]uint32, count)
	for i := range sizes {
		v, err := r.ReadU32BE()
		if err != nil {
			return stszResult{}, err
		}
		sizes[i] = v
	}
	res.Sizes = sizes
	return res, nil
}

func parseStsc(r *Reader, h BoxHeader) ([]stscEntry, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stsc too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	if int64(count)*12 > h.Payload-4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stsc entry_count %d exceeds box size", count)
	}
	entries := make([]stscEntry, count)
	for i := range entries {
		firstChunk, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		samplesPerChunk, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadU32BE(); err != nil { // sample_description_index, unused
			return nil, err
		}
		entries[i] = stscEntry{FirstChunk: firstChunk, SamplesPerChunk: samplesPerChunk}
	}
	return entries, nil
}

func parseStco(r *Reader, h BoxHeader) ([]int64, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stco too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	if int64(count)*4 > h.Payload-4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "stco entry_count %d exceeds box size", count)
	}
	offsets := make([]int64, count)
	for i := range offsets {
		v, err := r.ReadU32BE()
		if err != nil {
			return nil, err
		}
		offsets[i] = int64(v)
	}
	return offsets, nil
}

func parseCo64(r *Reader, h BoxHeader) ([]int64, error) {
	if h.Payload < 4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "co64 too small: %d", h.Payload)
	}
	count, err := r.ReadU32BE()
	if err != nil {
		return nil, err
	}
	if int64(count)*8 > h.Payload-4 {
		return nil, newErr(MalformedSize, h.Type, h.Offset, "co64 entry_count %d exceeds box size", count)
	}
	offsets := make([]int64, count)
	for i := range offsets {
		v, err := r.ReadU64BE()
		if err != nil {
			return nil, err
		}
		offsets[i] = int64(v)
	}
	return offsets, nil
}
