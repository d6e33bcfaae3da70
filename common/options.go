package common

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogOption configures the logger a component writes to. Components built
// without a LogOption stay silent.
type LogOption struct {
	LogLevel logrus.Level
	Logger   *logrus.Logger // used as is when set, LogLevel and Out are ignored
	Out      io.Writer      // destination of a new logger, stderr if nil
}

func NewLogger(opt ...LogOption) *logrus.Logger {
	logger := logrus.New()
	if len(opt) == 0 {
		logger.Out = io.Discard
		return logger
	}
	if opt[0].Logger != nil {
		return opt[0].Logger
	}
	if opt[0].Out != nil {
		logger.Out = opt[0].Out
	}
	logger.SetLevel(opt[0].LogLevel)
	return logger
}
