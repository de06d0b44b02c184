package cli

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// newLogger returns the process logger. Logs go to errOut so they never mix
// with command output.
func newLogger(errOut io.Writer, level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(errOut)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return log
}
