package progress

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tests := []struct {
		name  string
		label string
		total int
	}{
		{name: "standard tracker", label: "Reading files", total: 100},
		{name: "zero total", label: "Empty project", total: 0},
		{name: "single item", label: "One file", total: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tracker := NewTracker(tt.label, tt.total, WithWriter(&buf))
			require.NotNil(t, tracker)
			assert.Equal(t, tt.label, tracker.label)
			tracker.FinishSuccess()
		})
	}
}

func TestTracker_ConcurrentTicks(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Reading files", 200, WithWriter(&buf))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				tracker.Tick()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(200), tracker.bar.State().CurrentNum)
	assert.Contains(t, buf.String(), "Reading files")
	tracker.FinishSuccess()
}

func TestTracker_FinishMessages(t *testing.T) {
	var buf bytes.Buffer
	NewTracker("Empty dirs", 1, WithWriter(&buf)).FinishSkipped("disabled")
	assert.Contains(t, buf.String(), "  Empty dirs skipped (disabled)\n")

	buf.Reset()
	NewTracker("Analysis", 1, WithWriter(&buf)).FinishError(errors.New("boom"))
	assert.Contains(t, buf.String(), "  Analysis error: boom\n")
}

func TestTracker_Quiet(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker("Reading files", 3, WithWriter(&buf), WithQuiet(true))
	tracker.Tick()
	tracker.FinishSkipped("quiet")
	assert.Empty(t, buf.String())

	spinner := NewSpinner("Scanning", WithQuiet(true))
	spinner.SetTotal(2)
	spinner.Tick()
	spinner.FinishError(errors.New("ignored"))
}
