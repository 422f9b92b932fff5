package mp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSyncSampleNilTableMeansEverySampleIsSync(t *testing.T) {
	t.Parallel()
	track := &Track{SampleSize: make([]uint32, 3)}
	require.True(t, track.isSyncSample(0))
	require.True(t, track.isSyncSample(2))
}

func TestIsSyncSampleWithTable(t *testing.T) {
	t.Parallel()
	track := &Track{SyncSamples: []uint32{1, 4, 7}}
	require.True(t, track.isSyncSample(0))  // sample 1
	require.False(t, track.isSyncSample(1)) // sample 2
	require.False(t, track.isSyncSample(2)) // sample 3
	require.True(t, track.isSyncSample(3))  // sample 4
	require.True(t, track.isSyncSample(6))  // sample 7
	require.False(t, track.isSyncSample(7)) // sample 8
}

func TestPrevSyncSample(t *testing.T) {
	t.Parallel()
	track := &Track{SyncSamples: []uint32{1, 4, 7}}
	require.Equal(t, 0, track.prevSyncSample(0))
	require.Equal(t, 0, track.prevSyncSample(1))
	require.Equal(t, 0, track.prevSyncSample(2))
	require.Equal(t, 3, track.prevSyncSample(3))
	require.Equal(t, 3, track.prevSyncSample(5))
	require.Equal(t, 6, track.prevSyncSample(6))

	nilTable := &Track{}
	require.Equal(t, 2, nilTable.prevSyncSample(2)) // no stss: every sample is sync
}

func newSeekTrack(id uint32) *Track {
	return &Track{
		TrackID:            id,
		Timescale:          1000,
		Duration:           5000,
		SampleOffset:       []int64{0, 1, 2, 3, 4},
		SampleSize:         []uint32{1, 1, 1, 1, 1},
		SampleDecodingTime: []uint64{0, 1000, 2000, 3000, 4000},
		MetadataTrackIndex: -1,
		followsTrackIndex:  -1,
	}
}

func TestSeekRequireSyncFallsBackToPrecedingSyncSample(t *testing.T) {
	t.Parallel()
	track := newSeekTrack(1)
	track.SyncSamples = []uint32{1, 4} // samples at index 0 and 3 are sync
	m := &Movie{Tracks: []*Track{track}}

	// ts 2500: greatest dts<=2500 is index 2 (dts 2000), which isn't sync;
	// falls back to the nearest earlier sync sample, index 0.
	require.NoError(t, m.Seek(testLogger(), 2_500_000, true))
	require.Equal(t, 0, track.currentSample)

	// ts 500: greatest dts<=500 is index 0 (dts 0), already a sync sample.
	require.NoError(t, m.Seek(testLogger(), 500_000, true))
	require.Equal(t, 0, track.currentSample)
}

func TestSeekWithoutRequireSyncUsesGreatestDtsAtOrBeforeTarget(t *testing.T) {
	t.Parallel()
	track := newSeekTrack(1)
	track.SyncSamples = []uint32{1} // only sample 0 is sync
	m := &Movie{Tracks: []*Track{track}}

	require.NoError(t, m.Seek(testLogger(), 2_500_000, false))
	require.Equal(t, 2, track.currentSample) // dts 2000 is the greatest <= 2500, sync or not
}

func TestSeekNotFoundWhenRequireSyncAndNoEarlierSyncExists(t *testing.T) {
	t.Parallel()
	track := newSeekTrack(1)
	track.SyncSamples = []uint32{5} // only the last sample is sync
	m := &Movie{Tracks: []*Track{track}}

	err := m.Seek(testLogger(), 2_500_000, true)
	require.Error(t, err)
	var mpErr *Error
	require.ErrorAs(t, err, &mpErr)
	require.Equal(t, NotFound, mpErr.Kind)
}

func TestSeekSkipsChaptersAndFollowerMetadataTracks(t *testing.T) {
	t.Parallel()
	video := newSeekTrack(1)
	video.Type = TrackVideo

	chapters := newSeekTrack(2)
	chapters.Type = TrackChapters
	chapters.currentSample = 4 // would be clobbered if Seek didn't skip it

	followerMeta := newSeekTrack(3)
	followerMeta.Type = TrackMetadata
	followerMeta.followsTrackIndex = 0 // follows video, per linkTracks
	followerMeta.currentSample = 4

	video.MetadataTrackIndex = 2 // index of followerMeta in Tracks

	m := &Movie{Tracks: []*Track{video, chapters, followerMeta}}

	require.NoError(t, m.Seek(testLogger(), 2_000_000, false))
	require.Equal(t, 2, video.currentSample)
	require.Equal(t, 4, chapters.currentSample)   // untouched
	require.Equal(t, 2, followerMeta.currentSample) // synced to video's found index, dts matches
}

func TestNextSampleReadsIntoSuppliedBuffersAndAdvancesCursor(t *testing.T) {
	t.Parallel()
	data := []byte("ABCDEFGH")
	track := &Track{
		TrackID:            7,
		Timescale:          1000,
		SampleOffset:       []int64{0, 4},
		SampleSize:         []uint32{4, 4},
		SampleDecodingTime: []uint64{0, 500},
		MetadataTrackIndex: -1,
	}
	m := &Movie{Tracks: []*Track{track}}
	r := NewReader(bytes.NewReader(data), int64(len(data)))

	buf := make([]byte, 4)
	s1, err := m.NextSample(r, 7, buf, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("ABCD"), buf)
	require.EqualValues(t, 0, s1.SampleIndex)
	require.EqualValues(t, 4, s1.SampleSize)
	require.True(t, s1.IsSync)
	require.EqualValues(t, 500_000, s1.NextSampleDecodingTimeUs)

	s2, err := m.NextSample(r, 7, buf, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("EFGH"), buf)
	require.EqualValues(t, 500_000, s2.DecodingTimeUs)
	require.Zero(t, s2.NextSampleDecodingTimeUs)

	s3, err := m.NextSample(r, 7, nil, nil)
	require.NoError(t, err)
	require.Zero(t, s3) // past the end: zero-valued, no error
}

func TestNextSampleBufferTooSmall(t *testing.T) {
	t.Parallel()
	data := []byte("ABCD")
	track := &Track{
		TrackID:            7,
		SampleOffset:       []int64{0},
		SampleSize:         []uint32{4},
		SampleDecodingTime: []uint64{0},
		MetadataTrackIndex: -1,
	}
	m := &Movie{Tracks: []*Track{track}}
	r := NewReader(bytes.NewReader(data), int64(len(data)))

	_, err := m.NextSample(r, 7, make([]byte, 2), nil)
	require.Error(t, err)
	var mpErr *Error
	require.ErrorAs(t, err, &mpErr)
	require.Equal(t, BufferTooSmall, mpErr.Kind)
	require.Equal(t, 0, track.currentSample) // cursor not advanced on failure
}

func TestNextSampleUnknownTrackIDIsNotFound(t *testing.T) {
	t.Parallel()
	m := &Movie{Tracks: []*Track{{TrackID: 1, MetadataTrackIndex: -1}}}
	r := NewReader(bytes.NewReader(nil), 0)

	_, err := m.NextSample(r, 99, nil, nil)
	require.Error(t, err)
	var mpErr *Error
	require.ErrorAs(t, err, &mpErr)
	require.Equal(t, NotFound, mpErr.Kind)
}

func TestNextSampleReportsLinkedMetadataSize(t *testing.T) {
	t.Parallel()
	data := []byte("AAAAMMM")
	video := &Track{
		TrackID:            1,
		SampleOffset:       []int64{0},
		SampleSize:         []uint32{4},
		SampleDecodingTime: []uint64{0},
		MetadataTrackIndex: 1,
	}
	meta := &Track{
		TrackID:            2,
		SampleOffset:       []int64{4},
		SampleSize:         []uint32{3},
		SampleDecodingTime: []uint64{0},
		MetadataTrackIndex: -1,
	}
	m := &Movie{Tracks: []*Track{video, meta}}
	r := NewReader(bytes.NewReader(data), int64(len(data)))

	metaBuf := make([]byte, 3)
	s, err := m.NextSample(r, 1, nil, metaBuf)
	require.NoError(t, err)
	require.EqualValues(t, 3, s.MetadataSize)
	require.Equal(t, []byte("MMM"), metaBuf)
}

func TestRoundedTimescaleConvertHalfUp(t *testing.T) {
	t.Parallel()
	require.EqualValues(t, 1_500_000, roundedTimescaleConvert(3, 2))
	require.EqualValues(t, 333_333, roundedTimescaleConvert(1, 3))
	require.EqualValues(t, 0, roundedTimescaleConvert(5, 0))
}
