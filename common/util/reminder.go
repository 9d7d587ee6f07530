package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Reminder reports the progress of time consuming batch operations.
//
// Every call logs at debug level, and at most once per interval at info level so that
// long runs stay visible with the default log level.
type Reminder struct {
	start    time.Time     // start time since last info
	interval time.Duration // interval to report once at info level
	total    int
	logger   *logrus.Entry
}

// NewReminder returns a new Reminder for an operation of `total` items.
func NewReminder(logger *logrus.Entry, total int, interval time.Duration) *Reminder {
	return &Reminder{
		start:    time.Now(),
		interval: interval,
		total:    total,
		logger:   logger,
	}
}

// Remind reports that `completed` out of total items are done.
func (reminder *Reminder) Remind(message string, completed int) {
	level := logrus.DebugLevel
	if reminder.interval > 0 && time.Since(reminder.start) > reminder.interval {
		level = logrus.InfoLevel
		reminder.start = time.Now()
	}

	if !reminder.logger.Logger.IsLevelEnabled(level) {
		return
	}

	reminder.logger.WithFields(logrus.Fields{
		"completed": completed,
		"total":     reminder.total,
	}).Log(level, message)
}
