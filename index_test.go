package mp4

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrossJoinOffsetsSingleChunk(t *testing.T) {
	t.Parallel()
	track := &Track{}
	stsc := []stscEntry{{FirstChunk: 1, SamplesPerChunk: 3}}
	chunkOffset := []int64{1000}
	sizes := []uint32{10, 20, 30}

	offsets, err := crossJoinOffsets(track, stsc, chunkOffset, sizes, 3)
	require.NoError(t, err)
	require.Equal(t, []int64{1000, 1010, 1030}, offsets)
}

func TestCrossJoinOffsetsMultipleChunksVaryingRunLength(t *testing.T) {
	t.Parallel()
	track := &Track{}
	// chunk 1-2 carry 2 samples each, chunk 3 onward carries 1 sample.
	stsc := []stscEntry{
		{FirstChunk: 1, SamplesPerChunk: 2},
		{FirstChunk: 3, SamplesPerChunk: 1},
	}
	chunkOffset := []int64{0, 100, 200}
	sizes := []uint32{5, 5, 5, 5, 5}

	offsets, err := crossJoinOffsets(track, stsc, chunkOffset, sizes, 5)
	require.NoError(t, err)
	require.Equal(t, []int64{0, 5, 100, 105, 200}, offsets)
}

func TestCrossJoinOffsetsSampleCountMismatch(t *testing.T) {
	t.Parallel()
	track := &Track{}
	stsc := []stscEntry{{FirstChunk: 1, SamplesPerChunk: 3}}
	chunkOffset := []int64{1000}
	sizes := []uint32{10, 20, 30}

	_, err := crossJoinOffsets(track, stsc, chunkOffset, sizes, 99)
	require.Error(t, err)
	var mpErr *Error
	require.True(t, errors.As(err, &mpErr))
	require.Equal(t, ProtocolError, mpErr.Kind)
}

func TestCrossJoinOffsetsOutOfOrderFirstChunk(t *testing.T) {
	t.Parallel()
	track := &Track{}
	stsc := []stscEntry{
		{FirstChunk: 2, SamplesPerChunk: 1},
		{FirstChunk: 1, SamplesPerChunk: 1},
	}
	chunkOffset := []int64{0, 10}

	_, err := crossJoinOffsets(track, stsc, chunkOffset, nil, 2)
	require.Error(t, err)
	var mpErr *Error
	require.True(t, errors.As(err, &mpErr))
	require.Equal(t, ProtocolError, mpErr.Kind)
}

func TestExpandDecodingTimes(t *testing.T) {
	t.Parallel()
	track := &Track{}
	stts := []sttsEntry{
		{SampleCount: 2, SampleDelta: 100},
		{SampleCount: 1, SampleDelta: 50},
	}

	dts, err := expandDecodingTimes(track, stts, 3)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 100, 200}, dts)
}

func TestExpandDecodingTimesMismatch(t *testing.T) {
	t.Parallel()
	track := &Track{}
	stts := []sttsEntry{{SampleCount: 2, SampleDelta: 100}}

	_, err := expandDecodingTimes(track, stts, 5)
	require.Error(t, err)
	var mpErr *Error
	require.True(t, errors.As(err, &mpErr))
	require.Equal(t, ProtocolError, mpErr.Kind)
}

func TestResolveSampleSizesConstant(t *testing.T) {
	t.Parallel()
	sizes, err := resolveSampleSizes(&Track{}, stszResult{SampleCount: 3, Constant: 42})
	require.NoError(t, err)
	require.Equal(t, []uint32{42, 42, 42}, sizes)
}

func TestResolveSampleSizesPerSample(t *testing.T) {
	t.Parallel()
	sizes, err := resolveSampleSizes(&Track{}, stszResult{SampleCount: 2, Sizes: []uint32{7, 9}})
	require.NoError(t, err)
	require.Equal(t, []uint32{7, 9}, sizes)
}
