package mp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadBoxHeaderBasic(t *testing.T) {
	buf := append(be32(16), []byte("free")...)
	buf = append(buf, make([]byte, 8)...)
	r := NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, r.PushBudget(int64(len(buf))))

	h, err := readBoxHeader(r)
	require.NoError(t, err)
	require.Equal(t, TypeFree, h.Type)
	require.EqualValues(t, 16, h.Size)
	require.EqualValues(t, 8, h.Payload)
}

func TestReadBoxHeaderLargesize(t *testing.T) {
	buf := append(be32(1), []byte("mdat")...)
	buf = append(buf, be64(24)...)
	buf = append(buf, make([]byte, 8)...)
	r := NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, r.PushBudget(int64(len(buf))))

	h, err := readBoxHeader(r)
	require.NoError(t, err)
	require.Equal(t, TypeMdat, h.Type)
	require.EqualValues(t, 24, h.Size)
	require.EqualValues(t, 8, h.Payload)
}

func TestReadBoxHeaderFullBox(t *testing.T) {
	buf := append(be32(24), []byte("hdlr")...)
	buf = append(buf, 0x01, 0x00, 0x00, 0x00) // version 1, flags 0
	buf = append(buf, make([]byte, 12)...)
	r := NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, r.PushBudget(int64(len(buf))))

	h, err := readBoxHeader(r)
	require.NoError(t, err)
	require.EqualValues(t, 1, h.Version)
	require.EqualValues(t, 12, h.Payload)
}

func TestReadBoxHeaderZeroSizeExtendsToContainerEnd(t *testing.T) {
	buf := append(be32(0), []byte("skip")...)
	buf = append(buf, make([]byte, 10)...)
	r := NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, r.PushBudget(int64(len(buf))))

	h, err := readBoxHeader(r)
	require.NoError(t, err)
	require.EqualValues(t, len(buf), h.Size)
	require.EqualValues(t, len(buf)-8, h.Payload)
}

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func be64(v uint64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}
