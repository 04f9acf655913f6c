package walkview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/fieldview/internal/engine/gpures"
	"github.com/Faultbox/fieldview/internal/engine/rhi/nullrhi"
	"github.com/Faultbox/fieldview/internal/logger"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	logger.Log = zap.New(core)
	t.Cleanup(logger.Nop)
	return logs
}

func TestBindFailureIsLoggedAndSkipped(t *testing.T) {
	logs := observeLogs(t)
	v := New(DefaultOptions())
	cb := nullrhi.NewCommandBuffer(64, 64)

	assert.False(t, v.bind(cb, gpures.CategoryLines))
	assert.Empty(t, cb.Commands())

	entries := logs.FilterMessage("walkview bind failed, skipping draws").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lines", entries[0].ContextMap()["category"])
	assert.Contains(t, entries[0].ContextMap(), "error")
}

func TestBindSucceedsWhenReady(t *testing.T) {
	logs := observeLogs(t)
	h := newHarness(t, nil)

	h.cb.Reset()
	assert.True(t, h.view.bind(h.cb, gpures.CategoryMarkers))
	assert.Zero(t, logs.Len())
}
