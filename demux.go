package mp4

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Demuxer is the caller-facing handle on an opened movie. A Demuxer is not
// safe for concurrent use from multiple goroutines without external
// locking, matching the original library's single-threaded contract.
type Demuxer struct {
	r      *Reader
	closer io.Closer // non-nil if Open opened the stream itself
	opts   *options
	log    *logrus.Entry
	movie  *Movie
}

// Open scans the top-level boxes of rs (ftyp, moov, mdat, and any other
// top-level box, skipped), fully parses the "moov" box, resolves track
// links, extracts chapters, and reconciles metadata, grounded on the
// top-level scan loop at the start of mp4_demux_open and the build steps
// that follow it.
func Open(rs io.ReadSeeker, size int64, opts ...Option) (*Demuxer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := NewReader(rs, size)
	movie := &Movie{ChaptersTrackIndex: -1}

	mb := &MetadataBuffers{}
	var sawFtyp, sawMoov bool
	for r.Remaining() >= 8 {
		h, err := readBoxHeader(r)
		if err != nil {
			return nil, err
		}
		boxEnd := h.Offset + h.Size
		if boxEnd > r.Size() {
			if o.strictBoxSize {
				return nil, newErr(MalformedSize, h.Type, h.Offset, "top-level box %q overruns file size (end %d > size %d)", h.Type, boxEnd, r.Size())
			}
			o.logger.WithField("box", h.Type.String()).Warn("top-level box overruns file size, truncating")
			boxEnd = r.Size()
		}

		switch h.Type {
		case TypeFtyp:
			if err := parseFtyp(r, h); err != nil {
				return nil, err
			}
			sawFtyp = true
		case TypeMoov:
			ctx := &parseCtx{
				log:   o.logger,
				movie: movie,
				mb:    mb,
			}
			if err := parseMoovBody(r, h.Payload, ctx); err != nil {
				return nil, err
			}
			sawMoov = true
		default:
			// ftyp/moov handlers above consume exactly their own payload;
			// mdat and any other top-level box (free, skip, ...) are
			// skipped wholesale here since sample data is read later via
			// Reader.ReadAt, not during this scan.
		}

		if drift := boxEnd - r.CurrentOffset(); drift > 0 {
			if err := r.Skip(drift); err != nil {
				return nil, err
			}
		}
	}

	if !sawFtyp {
		o.logger.Warn("no ftyp box found, continuing anyway")
	}
	if !sawMoov {
		return nil, newErr(NotFound, TypeMoov, 0, "no moov box found")
	}

	if err := linkTracks(movie, o.logger); err != nil {
		return nil, err
	}

	if movie.ChaptersTrackIndex >= 0 {
		chTrack := movie.Tracks[movie.ChaptersTrackIndex]
		chapters, err := extractChapters(r, chTrack, o.maxChapters)
		if err != nil {
			return nil, err
		}
		movie.Chapters = chapters
	}

	movie.Metadata = reconcileMetadata(mb)

	return &Demuxer{r: r, opts: o, log: o.logger, movie: movie}, nil
}

// OpenFile opens path, wrapping *os.File so Close also closes the
// underlying file descriptor.
func OpenFile(path string, opts ...Option) (*Demuxer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(IoError, BoxType{}, 0, err, "opening %q", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapErr(IoError, BoxType{}, 0, err, "statting %q", path)
	}
	d, err := Open(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// Close releases resources opened by OpenFile. It is a no-op for a Demuxer
// created with Open directly over a caller-owned stream.
func (d *Demuxer) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}

// MediaInfo summarizes the movie's top-level duration and timing fields.
type MediaInfo struct {
	Timescale  uint32
	Duration   uint64
	DurationUs uint64
	CreationUs uint64
	ModifiedUs uint64
}

// MediaInfo returns the movie's header fields.
func (d *Demuxer) MediaInfo() MediaInfo {
	m := d.movie
	return MediaInfo{
		Timescale:  m.Timescale,
		Duration:   m.Duration,
		DurationUs: roundedTimescaleConvert(m.Duration, m.Timescale),
		CreationUs: m.CreationUs,
		ModifiedUs: m.ModifiedUs,
	}
}

// TrackCount returns the number of tracks found in the movie.
func (d *Demuxer) TrackCount() int { return len(d.movie.Tracks) }

// TrackInfo returns a snapshot of the given track's header fields and
// linkage. It panics if trackIndex is out of range, matching the
// convention that caller-supplied indices (obtained from TrackCount) are
// trusted.
func (d *Demuxer) TrackInfo(trackIndex int) *Track {
	return d.movie.Tracks[trackIndex]
}

// AVCDecoderConfig returns the first SPS and first PPS extracted from the
// given track's avcC box (borrowed, valid as long as the Demuxer is), or
// two nil spans if the track isn't an AVC video track.
func (d *Demuxer) AVCDecoderConfig(trackIndex int) (sps, pps []byte) {
	t := d.movie.Tracks[trackIndex]
	if t.Codec != CodecAVC {
		return nil, nil
	}
	return t.VideoSps, t.VideoPps
}

// NextSample returns metadata about the next sample of the track identified
// by trackID, advancing its cursor. See Movie.NextSample for the full
// caller-supplied-buffer contract.
func (d *Demuxer) NextSample(trackID uint32, sampleBuf, metaBuf []byte) (Sample, error) {
	return d.movie.NextSample(d.r, trackID, sampleBuf, metaBuf)
}

// Seek repositions every track's cursor to its sample at or before timeUs.
// See Movie.Seek for the full per-track skip/fallback/sync behavior.
func (d *Demuxer) Seek(timeUs uint64, requireSync bool) error {
	return d.movie.Seek(d.log, timeUs, requireSync)
}

// Chapters returns the movie's extracted chapter list, empty if there was
// no chapters track.
func (d *Demuxer) Chapters() []Chapter { return d.movie.Chapters }

// MetadataStrings returns the movie's reconciled key/value metadata
// entries.
func (d *Demuxer) MetadataStrings() []MetadataEntry { return d.movie.Metadata.Entries }

// MetadataCover returns the movie's cover art bytes, nil if none was
// found.
func (d *Demuxer) MetadataCover() []byte { return d.movie.Metadata.Cover }
