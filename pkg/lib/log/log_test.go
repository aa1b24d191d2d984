package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLazyLogger_SubsystemLevel(t *testing.T) {
	prev := Zap()
	defer SetDefault(prev)

	core, logs := observer.New(zapcore.DebugLevel)
	SetDefault(zap.New(core))

	SetSubsystemLevel("test/verbose", LevelDebug)
	SetSubsystemLevel("test/quiet", LevelWarn)

	Logger("test/verbose").Debug("visible", "k", 1)
	Logger("test/quiet").Info("hidden")
	Logger("test/quiet").Warn("shown")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "visible", entries[0].Message)
		assert.Equal(t, "test/verbose", entries[0].LoggerName)
		assert.Equal(t, int64(1), entries[0].ContextMap()["k"])
		assert.Equal(t, "shown", entries[1].Message)
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefghijk", 8))
}
