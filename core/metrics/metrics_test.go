package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTracker_CountsWithinWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	tr := NewTracker(time.Hour)
	tr.now = func() time.Time { return now }

	tr.Record()
	now = base.Add(30 * time.Minute)
	tr.Record()
	tr.Record()
	assert.Equal(t, 3, tr.Count())

	now = base.Add(61 * time.Minute)
	assert.Equal(t, 2, tr.Count())

	now = base.Add(2 * time.Hour)
	assert.Equal(t, 0, tr.Count())
}

func TestNewTracker_DefaultWindow(t *testing.T) {
	assert.Equal(t, time.Hour, NewTracker(0).Window())
}

func TestReporter_Report(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	tr := NewTracker(time.Hour)
	tr.Record()
	tr.Record()

	r, err := NewReporter(Config{Interval: 15 * time.Minute}, tr, zap.New(core))
	require.NoError(t, err)

	r.Report()
	entries := logs.FilterMessage("Upstream requests").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["count"])
}

func TestReporter_StartStop(t *testing.T) {
	r, err := NewReporter(Config{Interval: time.Hour}, NewTracker(time.Hour), zap.NewNop())
	require.NoError(t, err)

	r.Start()
	r.Stop()
}

func TestNewReporter_RejectsInvalidInterval(t *testing.T) {
	_, err := NewReporter(Config{}, NewTracker(time.Hour), zap.NewNop())
	assert.Error(t, err)
}
