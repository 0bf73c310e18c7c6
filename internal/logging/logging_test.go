package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsoleLogger(t *testing.T) {
	logger, err := New("debug", "console")
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Debug("console logger works")
}

func TestNewJSONLogger(t *testing.T) {
	logger, err := New("info", "json")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New("chatty", "console")
	assert.Error(t, err)
}
