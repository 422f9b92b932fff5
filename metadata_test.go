package mp4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileMetadataOrderAndCoverPrecedence(t *testing.T) {
	t.Parallel()
	mb := &MetadataBuffers{
		MetaEntries: []MetadataEntry{{Key: "title", Value: "From mdta"}},
		UdtaEntries: []MetadataEntry{{Key: "artist", Value: "From mdir"}},
		Location:    "Earth",
		LocationKey: "\xa9xyz",
		MetaCover:   []byte{1, 2, 3},
		UdtaCover:   []byte{9, 9, 9},
	}

	fm := reconcileMetadata(mb)
	require.Equal(t, []MetadataEntry{
		{Key: "title", Value: "From mdta"},
		{Key: "artist", Value: "From mdir"},
		{Key: "\xa9xyz", Value: "Earth"},
	}, fm.Entries)
	require.Equal(t, []byte{1, 2, 3}, fm.Cover)
}

func TestReconcileMetadataFallsBackToUdtaCover(t *testing.T) {
	t.Parallel()
	mb := &MetadataBuffers{UdtaCover: []byte{7, 7}}
	fm := reconcileMetadata(mb)
	require.Equal(t, []byte{7, 7}, fm.Cover)
}

func TestReconcileMetadataSkipsEmptyValues(t *testing.T) {
	t.Parallel()
	mb := &MetadataBuffers{
		MetaEntries: []MetadataEntry{{Key: "title", Value: ""}, {Key: "date", Value: "2026"}},
	}
	fm := reconcileMetadata(mb)
	require.Equal(t, []MetadataEntry{{Key: "date", Value: "2026"}}, fm.Entries)
}

func TestReconcileMetadataSkipsEmptyKeys(t *testing.T) {
	t.Parallel()
	mb := &MetadataBuffers{
		UdtaEntries: []MetadataEntry{{Key: "", Value: "orphaned value"}, {Key: "\xa9cmt", Value: "kept"}},
	}
	fm := reconcileMetadata(mb)
	require.Equal(t, []MetadataEntry{{Key: "\xa9cmt", Value: "kept"}}, fm.Entries)
}

func TestReconcileMetadataNoLocationOmitsEntry(t *testing.T) {
	t.Parallel()
	fm := reconcileMetadata(&MetadataBuffers{})
	require.Empty(t, fm.Entries)
	require.Nil(t, fm.Cover)
}

func TestReconcileMetadataLocationRequiresBothKeyAndValue(t *testing.T) {
	t.Parallel()
	fm := reconcileMetadata(&MetadataBuffers{Location: "Earth"})
	require.Empty(t, fm.Entries) // LocationKey unset, so the entry is omitted
}
