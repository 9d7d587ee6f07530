package common

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogOption configures the logger of a library component.
type LogOption struct {
	LogLevel logrus.Level
	Logger   *logrus.Logger
	Fields   logrus.Fields // attached to every entry
}

// IsZero reports whether no logging was configured.
func (opt LogOption) IsZero() bool {
	return opt.Logger == nil && opt.LogLevel == logrus.PanicLevel && len(opt.Fields) == 0
}

// NewLogger returns a log entry for the given option. Without option, all logs are
// discarded, as they are for a zero option.
func NewLogger(opt ...LogOption) *logrus.Entry {
	if len(opt) == 0 || opt[0].IsZero() {
		logger := logrus.New()
		logger.Out = io.Discard
		return logrus.NewEntry(logger)
	}

	logger := opt[0].Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(opt[0].LogLevel)
	}

	return logger.WithFields(opt[0].Fields)
}
