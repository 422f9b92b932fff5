package mp4

// reconcileMetadata merges the entries collected across moov/meta,
// moov/udta/meta, and moov/udta/©xyz into one ordered result (entries from
// both schemes are kept side by side; no key is de-duplicated), grounded on
// mp4_demux_build_metadata: mdta-scheme
// entries first, then mdir-scheme entries, then a trailing location entry
// keyed by the location atom's own fourcc, with cover art preferring the
// mdta-scheme (meta) source over the mdir-scheme (udta) one. An entry is
// only included if both its key and its value are non-empty, matching
// mp4_demux_build_metadata's strlen(key) > 0 && strlen(value) > 0 check.
func reconcileMetadata(mb *MetadataBuffers) FinalMetadata {
	var fm FinalMetadata

	for _, e := range mb.MetaEntries {
		if e.Key == "" || e.Value == "" {
			continue
		}
		fm.Entries = append(fm.Entries, e)
	}
	for _, e := range mb.UdtaEntries {
		if e.Key == "" || e.Value == "" {
			continue
		}
		fm.Entries = append(fm.Entries, e)
	}
	if mb.LocationKey != "" && mb.Location != "" {
		fm.Entries = append(fm.Entries, MetadataEntry{Key: mb.LocationKey, Value: mb.Location})
	}

	switch {
	case len(mb.MetaCover) > 0:
		fm.Cover = mb.MetaCover
	case len(mb.UdtaCover) > 0:
		fm.Cover = mb.UdtaCover
	}

	return fm
}
