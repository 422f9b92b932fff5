package mp4

// TrackType classifies a track's media handler.
type TrackType int

const (
	TrackUnknown TrackType = iota
	TrackVideo
	TrackAudio
	TrackHint
	TrackMetadata
	TrackText
	TrackChapters
)

func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackHint:
		return "hint"
	case TrackMetadata:
		return "metadata"
	case TrackText:
		return "text"
	case TrackChapters:
		return "chapters"
	default:
		return "unknown"
	}
}

// Codec identifies the sample entry codec this demuxer understands well
// enough to expose a decoder configuration for.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecAVC
)

func (c Codec) String() string {
	switch c {
	case CodecAVC:
		return "avc"
	default:
		return "unknown"
	}
}

// RefType identifies the semantics of a track-reference ("tref") entry.
type RefType int

const (
	RefNone RefType = iota
	// RefChapters ("chap") points from a media track to its chapters track.
	RefChapters
	// RefMetadata ("cdsc") points from a metadata track to the track it
	// describes.
	RefMetadata
)

// Track is the parsed state of one "trak" box, plus the sample index built
// from its sample tables. All timestamps are in the track's own timescale
// unless explicitly converted to microseconds by an accessor.
type Track struct {
	Index int // position within Movie.Tracks; used for cross-track links

	TrackID    uint32
	Type       TrackType
	Codec      Codec
	Timescale  uint32
	Duration   uint64 // in Timescale units
	CreationUs uint64 // media creation time, Unix epoch microseconds
	ModifiedUs uint64 // media modification time, Unix epoch microseconds

	Width, Height uint32 // integer pixels: from the avc1 sample entry, else the integer part of tkhd's 16.16 values

	HandlerName string

	// RefTrackID is the target of this track's first (and only parsed)
	// tref entry, 0 if none. RefKind classifies it.
	RefTrackID uint32
	RefKind    RefType
	// refTrackIndex is resolved by the track linker (C6) from RefTrackID
	// once every track's ID is known; -1 until resolved or if unresolved.
	refTrackIndex int

	// MetadataTrackIndex is, for a media track, the index into Movie.Tracks
	// of the metadata track describing it (set by the track linker via a
	// "cdsc" tref, or by the single-video/single-metadata fallback), or -1.
	MetadataTrackIndex int
	// followsTrackIndex is, for a metadata or chapters track, the index of
	// the track whose sample cursor it follows instead of exposing its own
	// (C9's skip rule); -1 for an ordinary media track.
	followsTrackIndex int

	// VideoSps and VideoPps hold the first sequence/picture parameter set
	// verbatim out of an avcC record (Codec == CodecAVC); any additional
	// SPS/PPS entries present in the record are parsed-past but discarded,
	// matching mp4_demux_parse_avcc.
	VideoSps []byte
	VideoPps []byte

	// Sample index (C5), one entry per sample, all the same length.
	SampleOffset       []int64  // absolute file offset of each sample
	SampleSize         []uint32 // byte length of each sample
	SampleDecodingTime []uint64 // cumulative DTS in Timescale units

	// SyncSamples holds the 1-based sample numbers listed in stss, in
	// ascending order. A nil slice (as opposed to empty) means there was
	// no stss box, so every sample is implicitly a sync sample.
	SyncSamples []uint32

	// currentSample is the 0-based index of the next sample NextSample
	// will return; advanced by NextSample, set by Seek.
	currentSample int
}

// SampleCount returns the number of samples indexed for this track.
func (t *Track) SampleCount() int { return len(t.SampleSize) }

// MetadataEntry is one reconciled key/value pair exposed via
// FinalMetadata.Entries. Its key is the string from a "keys" box (mdta
// scheme), the raw 4-byte ilst tag type (mdir scheme, e.g. "\xa9nam"), or
// the location atom's own fourcc ("\xa9xyz").
type MetadataEntry struct {
	Key   string
	Value string
}

// MetadataBuffers accumulates metadata collected from meta/keys/ilst/data
// boxes (at the movie level, i.e. moov/meta, and at udta level) and from
// the QuickTime "©xyz" location atom, before C8 reconciles them into a
// single FinalMetadata. Kept distinct from FinalMetadata because the
// precedence rule (meta over udta) can only be applied once both sources
// have been fully walked.
type MetadataBuffers struct {
	MetaEntries []MetadataEntry // from a meta box with a sibling "keys" box (mdta scheme, e.g. moov/meta/keys+ilst)
	UdtaEntries []MetadataEntry // from a meta box without a "keys" box (mdir scheme, e.g. moov/udta/meta/ilst)
	Location    string          // from moov/udta/©xyz
	LocationKey string          // the location atom's own fourcc (e.g. "\xa9xyz"), used as its reconciled key

	MetaCover []byte // image data box whose key (mdta scheme) is "com.apple.quicktime.artwork"
	UdtaCover []byte // image data box under an ilst "covr" tag (mdir scheme)
}

// FinalMetadata is the reconciled, caller-facing metadata for a movie.
type FinalMetadata struct {
	Entries []MetadataEntry
	Cover   []byte
}

// Chapter is one entry extracted from a chapters track's text samples.
type Chapter struct {
	Index       int
	Name        string
	TimestampUs uint64
}

// Movie is the fully parsed state of an "moov" box: header fields, every
// track, resolved cross-track links, extracted chapters, and reconciled
// metadata. It is built once by Open and never mutated afterward except
// for each Track's sample cursor (advanced by NextSample/Seek).
type Movie struct {
	Timescale   uint32
	Duration    uint64 // in Timescale units
	CreationUs  uint64
	ModifiedUs  uint64
	NextTrackID uint32

	Tracks []*Track

	// ChaptersTrackIndex is the index into Tracks of the track supplying
	// Chapters, or -1 if none was found.
	ChaptersTrackIndex int

	Chapters []Chapter
	Metadata FinalMetadata
}

// TrackByID returns the track with the given TrackID, or nil.
func (m *Movie) TrackByID(id uint32) *Track {
	for _, t := range m.Tracks {
		if t.TrackID == id {
			return t
		}
	}
	return nil
}
