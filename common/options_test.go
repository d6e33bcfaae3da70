package common

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerDiscardsByDefault(t *testing.T) {
	logger := NewLogger()
	assert.Equal(t, io.Discard, logger.Out)
}

func TestNewLoggerReusesGivenLogger(t *testing.T) {
	given := logrus.New()
	assert.Same(t, given, NewLogger(LogOption{Logger: given, LogLevel: logrus.TraceLevel}))
}

func TestNewLoggerLevelAndOut(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOption{LogLevel: logrus.WarnLevel, Out: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
