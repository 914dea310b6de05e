package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestTestLogger_CapturesAllLevels(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Trace(ctx, "trace msg")
	tl.Debug(ctx, "debug msg")
	tl.Info(ctx, "info msg")

	assert.Len(t, tl.All(), 3)
	tl.AssertLogged(t, TraceLevel, "trace")
	tl.AssertLogged(t, zapcore.DebugLevel, "debug")
	tl.AssertNotLogged(t, zapcore.ErrorLevel, "info")
}

func TestTestLogger_AssertField(t *testing.T) {
	tl := NewTestLogger()
	tl.Info(context.Background(), "characters loaded",
		zap.String("source", "api"),
		zap.Int("count", 20),
	)

	tl.AssertField(t, "characters loaded", "source", "api")
	tl.AssertField(t, "characters loaded", "count", int64(20))
}

func TestTestLogger_FilterAndReset(t *testing.T) {
	tl := NewTestLogger()
	ctx := context.Background()

	tl.Info(ctx, "alpha")
	tl.Info(ctx, "beta")
	assert.Equal(t, 1, tl.FilterMessage("alpha").Len())

	tl.Reset()
	assert.Empty(t, tl.All())
}

func TestTestLogger_Fields(t *testing.T) {
	tl := NewTestLogger()
	tl.Warn(context.Background(), "load failed", Operation("GetCharactersAPI"), Status(500))

	fields := tl.Fields("load failed")
	assert.Equal(t, "GetCharactersAPI", fields[KeyOperation])
	assert.Equal(t, int64(500), fields[KeyStatus])
	assert.Nil(t, tl.Fields("never logged"))
}
