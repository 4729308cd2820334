package mlogger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	for _, level := range []string{LogLevelInfo, LogLevelDebug, LogLevelNone} {
		l, err := GetLogger(level)
		require.NoError(t, err)
		require.NotNil(t, l)
	}

	_, err := GetLogger("chatty")
	assert.Error(t, err)

	assert.NotPanics(t, func() {
		MustGetLogger(LogLevelInfo).Info("test entry")
	})
	assert.Panics(t, func() {
		MustGetLogger("chatty")
	})
}
