package mp4

// buildSampleIndex cross-joins a track's stsc/stco/stsz/stts tables into
// flat per-sample offset, size, and decoding-time vectors, grounded on the
// first half of mp4_demux_build_tracks.
func buildSampleIndex(t *Track, stsc []stscEntry, chunkOffset []int64, stsz stszResult, stts []sttsEntry) error {
	sizes, err := resolveSampleSizes(t, stsz)
	if err != nil {
		return err
	}
	t.SampleSize = sizes

	offsets, err := crossJoinOffsets(t, stsc, chunkOffset, sizes, stsz.SampleCount)
	if err != nil {
		return err
	}
	t.SampleOffset = offsets

	dts, err := expandDecodingTimes(t, stts, stsz.SampleCount)
	if err != nil {
		return err
	}
	t.SampleDecodingTime = dts

	return nil
}

func resolveSampleSizes(t *Track, stsz stszResult) ([]uint32, error) {
	if stsz.Constant != 0 {
		sizes := make([]uint32, stsz.SampleCount)
		for i := range sizes {
			sizes[i] = stsz.Constant
		}
		return sizes, nil
	}
	return stsz.Sizes, nil
}

// crossJoinOffsets walks stsc's run-length-encoded (first_chunk,
// samples_per_chunk) entries against the flat chunkOffset table to compute
// each sample's absolute file offset, exactly as the original's two-pass
// loop does (first to total the sample count for the consistency check,
// then to place each sample within its chunk).
func crossJoinOffsets(t *Track, stsc []stscEntry, chunkOffset []int64, sampleSize []uint32, declaredCount uint32) ([]int64, error) {
	chunkCount := uint32(len(chunkOffset))

	total := uint32(0)
	lastFirstChunk := uint32(1)
	lastSamplesPerChunk := uint32(0)
	for _, e := range stsc {
		if e.FirstChunk < lastFirstChunk {
			return nil, newErr(ProtocolError, TypeStsc, 0, "stsc entries out of order: first_chunk %d < %d", e.FirstChunk, lastFirstChunk)
		}
		run := e.FirstChunk - lastFirstChunk
		total += run * lastSamplesPerChunk
		lastFirstChunk = e.FirstChunk
		lastSamplesPerChunk = e.SamplesPerChunk
	}
	if chunkCount+1 < lastFirstChunk {
		return nil, newErr(ProtocolError, TypeStsc, 0, "stsc references chunk %d beyond stco/co64 count %d", lastFirstChunk, chunkCount)
	}
	total += (chunkCount - lastFirstChunk + 1) * lastSamplesPerChunk

	if total != declaredCount {
		return nil, newErr(ProtocolError, TypeStsz, 0, "sample count mismatch: stsc/stco cross-join yields %d, stsz declares %d", total, declaredCount)
	}

	offsets := make([]int64, total)
	lastFirstChunk = 1
	lastSamplesPerChunk = 0
	n := uint32(0)
	chunkIdx := uint32(0)
	place := func(runChunks uint32, samplesPerChunk uint32) error {
		for j := uint32(0); j < runChunks; j, chunkIdx = j+1, chunkIdx+1 {
			offsetInChunk := int64(0)
			for k := uint32(0); k < samplesPerChunk; k, n = k+1, n+1 {
				if chunkIdx >= chunkCount {
					return newErr(ProtocolError, TypeStco, 0, "chunk index %d exceeds chunk offset table (%d entries)", chunkIdx, chunkCount)
				}
				offsets[n] = chunkOffset[chunkIdx] + offsetInChunk
				offsetInChunk += int64(sampleSize[n])
			}
		}
		return nil
	}
	for _, e := range stsc {
		run := e.FirstChunk - lastFirstChunk
		if err := place(run, lastSamplesPerChunk); err != nil {
			return nil, err
		}
		lastFirstChunk = e.FirstChunk
		lastSamplesPerChunk = e.SamplesPerChunk
	}
	if err := place(chunkCount-lastFirstChunk+1, lastSamplesPerChunk); err != nil {
		return nil, err
	}
	return offsets, nil
}

// expandDecodingTimes expands stts's run-length-encoded (sample_count,
// sample_delta) entries into a cumulative per-sample decoding timestamp
// vector, matching mp4_demux_build_tracks's second consistency check and
// its cumulative-sum loop.
func expandDecodingTimes(t *Track, stts []sttsEntry, declaredCount uint32) ([]uint64, error) {
	total := uint32(0)
	for _, e := range stts {
		total += e.SampleCount
	}
	if total != declaredCount {
		return nil, newErr(ProtocolError, TypeStts, 0, "sample count mismatch: stts totals %d, stsz declares %d", total, declaredCount)
	}

	dts := make([]uint64, total)
	ts := uint64(0)
	k := 0
	for _, e := range stts {
		for j := uint32(0); j < e.SampleCount; j++ {
			dts[k] = ts
			ts += uint64(e.SampleDelta)
			k++
		}
	}
	return dts, nil
}
