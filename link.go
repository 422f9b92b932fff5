package mp4

// linkTracks resolves every track's tref-based cross-reference into index
// links, grounded on the track-linking loop inside mp4_demux_build_tracks.
// It also applies the single-video/single-metadata fallback heuristic and
// locates the chapters track, if any. A text track (TrackText, from its own
// hdlr box) is reclassified to TrackChapters here, the moment a "chap" tref
// from another track is found to target it, matching the original: a plain
// text track with no such link stays TrackText.
func linkTracks(m *Movie, log logEntry) error {
	var videoTk, metaTk *Track
	var videoCount, audioCount, hintCount, metadataCount int

	for _, t := range m.Tracks {
		switch t.Type {
		case TrackVideo:
			videoCount++
			videoTk = t
		case TrackAudio:
			audioCount++
		case TrackHint:
			hintCount++
		case TrackMetadata:
			metadataCount++
			metaTk = t
		}

		if t.RefTrackID == 0 {
			continue
		}
		ref := m.TrackByID(t.RefTrackID)
		if ref == nil {
			log.Warn("tref points to unknown track id, ignoring link")
			continue
		}
		t.refTrackIndex = ref.Index

		switch {
		case t.RefKind == RefMetadata && t.Type == TrackMetadata:
			ref.MetadataTrackIndex = t.Index
			t.followsTrackIndex = ref.Index
		case t.RefKind == RefChapters && ref.Type == TrackText:
			ref.Type = TrackChapters
			ref.followsTrackIndex = t.Index
			m.ChaptersTrackIndex = ref.Index
		}
	}

	if videoCount == 1 && metadataCount == 1 && audioCount == 0 && hintCount == 0 &&
		videoTk.MetadataTrackIndex < 0 {
		videoTk.MetadataTrackIndex = metaTk.Index
		metaTk.followsTrackIndex = videoTk.Index
	}

	return nil
}

// logEntry is the minimal logging surface linkTracks and other C6-C9
// components need; satisfied by *logrus.Entry.
type logEntry interface {
	Warn(args ...any)
}
