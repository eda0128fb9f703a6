package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugDisabledByDefault(t *testing.T) {
	l := &Logger{}
	assert.False(t, l.IsDebugEnabled())
}

func TestEnableDebugAndVerboseToggle(t *testing.T) {
	l := &Logger{}
	assert.False(t, l.IsDebugEnabled())
	assert.False(t, l.IsVerboseEnabled())

	l.EnableDebug()
	assert.True(t, l.IsDebugEnabled())

	l.EnableVerbose()
	assert.True(t, l.IsVerboseEnabled())
}

func TestNilEventChainIsSafe(t *testing.T) {
	var e *Event
	assert.NotPanics(t, func() {
		e.Metadata("k", "v").Msgf("anything %d", 1)
	})
}

func TestEventChainDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Info().Metadata("stage", "test").Msgf("hello %s", "world")
		Success().Msgf("done")
		Warning().Msgf("careful")
		Error().Msgf("oops")
	})
}

func TestDebugAndVerboseRespectGlobalState(t *testing.T) {
	defer func() {
		DefaultLogger = &Logger{}
	}()

	DefaultLogger = &Logger{}
	assert.Nil(t, Debug())
	assert.Nil(t, Verbose())

	DefaultLogger.EnableDebug()
	DefaultLogger.EnableVerbose()
	assert.NotNil(t, Debug())
	assert.NotNil(t, Verbose())
}
