package mp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// box wraps payload with a standard 8-byte (type, size) header.
func box(fourcc string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	be.PutUint32(buf[:4], uint32(8+len(payload)))
	copy(buf[4:8], fourcc)
	copy(buf[8:], payload)
	return buf
}

func fullBoxPayload(version uint8, flags uint32, rest []byte) []byte {
	buf := make([]byte, 4+len(rest))
	buf[0] = version
	buf[1] = byte(flags >> 16)
	buf[2] = byte(flags >> 8)
	buf[3] = byte(flags)
	copy(buf[4:], rest)
	return buf
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// buildMinimalMovie constructs a synthetic ftyp+moov+mdat file with a
// single AVC video track of two samples, exercising the full parse,
// index-build, and link pipeline through Open.
func buildMinimalMovie(t *testing.T) []byte {
	t.Helper()

	ftyp := box("ftyp", concat(be32(0x69736f6d), be32(0))) // "isom", minor_version 0

	mvhd := box("mvhd", fullBoxPayload(0, 0, concat(
		be32(0), be32(0), // creation, modification
		be32(1000),       // timescale
		be32(5000),       // duration
		make([]byte, 76), // rate+volume+reserved+matrix+pre_defined
		be32(2),          // next_track_ID
	)))

	tkhd := box("tkhd", fullBoxPayload(0, 0x7, concat(
		be32(0), be32(0), // creation, modification
		be32(1),     // track_ID
		be32(0),     // reserved
		be32(5000),  // duration
		make([]byte, 8+4+4+36), // reserved, layer/alt, volume/reserved, matrix
		be32(1920<<16),
		be32(1080<<16),
	)))

	mdhd := box("mdhd", fullBoxPayload(0, 0, concat(
		be32(0), be32(0),
		be32(1000),
		be32(5000),
		[]byte{0, 0, 0, 0}, // language + pre_defined
	)))

	hdlrName := append([]byte("VideoHandler"), 0)
	hdlr := box("hdlr", fullBoxPayload(0, 0, concat(
		be32(0),         // pre_defined
		[]byte("vide"),  // handler_type
		make([]byte, 12), // reserved[3]
		hdlrName,
	)))

	avcC := box("avcC", []byte{
		0x01, 0x64, 0x00, 0x1f, // configuration_version, profile, profile_compat, level
		0xff, 0xe1, // lengthSizeMinusOne (reserved), reserved+numOfSPS=1
		0x00, 0x04, // sps_length
		0x67, 0x64, 0x00, 0x1f, // sps bytes
		0x01,       // numOfPPS
		0x00, 0x02, // pps_length
		0x68, 0xee, // pps bytes
	})
	avc1Payload := concat(
		make([]byte, 6), be16(1), // reserved, data_reference_index
		make([]byte, 16), // pre_defined, reserved, pre_defined[3]
		be16(1920), be16(1080),
		make([]byte, 50), // resolution, reserved, frame_count, compressor, depth, pre_defined
		avcC,
	)
	avc1 := box("avc1", avc1Payload)
	stsd := box("stsd", fullBoxPayload(0, 0, concat(be32(1), avc1)))

	stts := box("stts", fullBoxPayload(0, 0, concat(be32(1), be32(2), be32(2500))))
	stsc := box("stsc", fullBoxPayload(0, 0, concat(be32(1), be32(1), be32(2), be32(1))))
	stsz := box("stsz", fullBoxPayload(0, 0, concat(be32(0), be32(2), be32(100), be32(150))))
	stco := box("stco", fullBoxPayload(0, 0, concat(be32(1), be32(1000))))

	stbl := box("stbl", concat(stsd, stts, stsc, stsz, stco))
	minf := box("minf", stbl)
	mdia := box("mdia", concat(mdhd, hdlr, minf))
	trak := box("trak", concat(tkhd, mdia))

	moov := box("moov", concat(mvhd, trak))

	head := concat(ftyp, moov)
	// mdat's payload begins at offset len(head)+8; stco above assumed sample data
	// starts at absolute offset 1000, so pad head out to that point.
	pad := make([]byte, 1000-int64(len(head))-8)
	mdatPayload := concat(pad, bytes.Repeat([]byte{0xAA}, 100), bytes.Repeat([]byte{0xBB}, 150))
	mdat := box("mdat", mdatPayload)

	return concat(head, mdat)
}

func be16(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func TestOpenParsesMinimalMovie(t *testing.T) {
	t.Parallel()
	data := buildMinimalMovie(t)
	d, err := Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	defer d.Close()

	info := d.MediaInfo()
	require.EqualValues(t, 1000, info.Timescale)
	require.EqualValues(t, 5000, info.Duration)

	require.Equal(t, 1, d.TrackCount())
	tr := d.TrackInfo(0)
	require.Equal(t, TrackVideo, tr.Type)
	require.Equal(t, CodecAVC, tr.Codec)
	require.EqualValues(t, 1920, tr.Width)
	require.EqualValues(t, 1080, tr.Height)
	require.Equal(t, "VideoHandler", tr.HandlerName)
	require.Equal(t, 2, tr.SampleCount())
	require.Equal(t, []int64{1000, 1100}, tr.SampleOffset)
	require.Equal(t, []uint32{100, 150}, tr.SampleSize)

	sps, pps := d.AVCDecoderConfig(0)
	require.Equal(t, []byte{0x67, 0x64, 0x00, 0x1f}, sps)
	require.Equal(t, []byte{0x68, 0xee}, pps)

	trackID := tr.TrackID

	buf := make([]byte, 150)
	s1, err := d.NextSample(trackID, buf[:100], nil)
	require.NoError(t, err)
	require.EqualValues(t, 100, s1.SampleSize)
	require.True(t, bytes.Equal(buf[:100], bytes.Repeat([]byte{0xAA}, 100)))

	s2, err := d.NextSample(trackID, buf[:150], nil)
	require.NoError(t, err)
	require.EqualValues(t, 150, s2.SampleSize)
	require.True(t, bytes.Equal(buf[:150], bytes.Repeat([]byte{0xBB}, 150)))

	s3, err := d.NextSample(trackID, nil, nil)
	require.NoError(t, err)
	require.Zero(t, s3)
}
