package mp4

import "github.com/sirupsen/logrus"

const defaultMaxChapters = 100

// Option configures a Demuxer at Open time.
type Option func(*options)

type options struct {
	logger        *logrus.Entry
	maxChapters   int
	strictBoxSize bool
}

func defaultOptions() *options {
	return &options{
		logger:        newDefaultLogger(),
		maxChapters:   defaultMaxChapters,
		strictBoxSize: false,
	}
}

// WithLogger supplies a logger used for all diagnostic output. By default
// Open creates a logrus.Logger at InfoLevel.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.logger = l.WithField("component", "mp4") }
}

// WithMaxChapters overrides the default cap (100) on the number of chapter
// entries extracted from a chapters track.
func WithMaxChapters(n int) Option {
	return func(o *options) { o.maxChapters = n }
}

// WithStrictBoxSizes makes a top-level box whose declared size runs past the
// end of the file a hard MalformedSize error. By default such a box is
// logged at Warn and truncated at the end of the file. Boxes nested inside
// moov are checked against their container's budget in either mode.
func WithStrictBoxSizes() Option {
	return func(o *options) { o.strictBoxSize = true }
}
