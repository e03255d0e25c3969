// Package logrus adapts a logrus entry to asidecache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/asidecache"
)

var _ asidecache.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New tags every line with component=asidecache. A nil l uses the logrus
// standard logger.
func New(l *logrus.Logger) LogrusLogger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return LogrusLogger{E: l.WithField("component", "asidecache")}
}

func (l LogrusLogger) Debug(msg string, f asidecache.Fields) { l.with(f).Debug(msg) }
func (l LogrusLogger) Info(msg string, f asidecache.Fields)  { l.with(f).Info(msg) }
func (l LogrusLogger) Warn(msg string, f asidecache.Fields)  { l.with(f).Warn(msg) }
func (l LogrusLogger) Error(msg string, f asidecache.Fields) { l.with(f).Error(msg) }

// "err" goes to logrus.ErrorKey so formatters and hooks pick it up.
func (l LogrusLogger) with(f asidecache.Fields) *logrus.Entry {
	fields := make(logrus.Fields, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok && k == "err" {
			fields[logrus.ErrorKey] = err
			continue
		}
		fields[k] = v
	}
	return l.E.WithFields(fields)
}
