package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"info", logrus.InfoLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
	assert.False(t, isJSON)

	prod := NewLogger("info", "production")
	_, isJSON = prod.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}
