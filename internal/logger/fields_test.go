package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsDropsBlankEntries(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  ollama  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "no key"},
	)

	require.Len(t, fields, 1)
	assert.Equal(t, "provider", fields[0].Key)
	assert.Equal(t, "ollama", fields[0].String)
	assert.Empty(t, StringFields())
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "gemini-2.5-pro").Info("hello")

	entries := observed.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "gemini", ctx[FieldProvider])
	assert.Equal(t, "gemini-2.5-pro", ctx[FieldModel])
}

func TestWithRunSkipsMissingValues(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithRun(zap.New(core), "run-1", "").Info("hello")

	ctx := observed.All()[0].ContextMap()
	assert.Equal(t, "run-1", ctx[FieldRunID])
	_, hasJob := ctx[FieldJobID]
	assert.False(t, hasJob)
}

func TestNilLoggerFallsBackToNop(t *testing.T) {
	enriched := WithFields(nil, zap.String("k", "v"))
	require.NotNil(t, enriched)
	enriched.Info("does not panic")

	require.NotNil(t, WithCommonFields(nil, "ollama", "llama3.1"))
}

func TestNewBuildsBothEncodings(t *testing.T) {
	for _, json := range []bool{false, true} {
		l, err := New(json, true)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	}
}
