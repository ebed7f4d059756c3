package logging

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("verbose", os.Stdout)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)

	logger, err := New("debug", os.Stdout)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestValidateLevel(t *testing.T) {
	for _, level := range Levels {
		assert.NoError(t, ValidateLevel(level))
		_, err := ParseLevel(level)
		assert.NoError(t, err, "every listed level parses")
	}
	assert.ErrorIs(t, ValidateLevel("trace"), ErrInvalidLogLevel)
}
