package mp4

import "github.com/sirupsen/logrus"

// newDefaultLogger returns the logger used when Open is not given one via
// WithLogger. The package logs only at Warn: a top-level box overrunning
// the file, a missing ftyp, a tref to an unknown track, an incomplete sample
// table, and a linked metadata track whose cursor Seek could not sync.
// Failed operations are returned as errors, not logged.
func newDefaultLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l.WithField("component", "mp4")
}
