package tour

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tour.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	return s, path
}

func TestNewStoreMissingFile(t *testing.T) {
	s, path := tempStore(t)

	p := s.Progress()
	assert.False(t, p.Active)
	assert.False(t, p.HasSeenWelcome)
	assert.Empty(t, p.CompletedSteps)
	assert.Empty(t, p.CompletedActions)

	// No file until the first transition.
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTransitionsPersist(t *testing.T) {
	s, path := tempStore(t)

	require.NoError(t, s.StartTour())
	require.NoError(t, s.MarkWelcomeSeen())
	require.NoError(t, s.CompleteStep("connect-wallet"))
	require.NoError(t, s.RecordAction("quote-requested"))

	// A fresh store sees everything the first one wrote.
	reloaded, err := NewStore(path)
	require.NoError(t, err)
	p := reloaded.Progress()
	assert.True(t, p.Active)
	assert.True(t, p.HasSeenWelcome)
	assert.True(t, p.CompletedSteps["connect-wallet"])
	assert.Equal(t, 1, p.StepIndex)
	_, ok := p.CompletedActions["quote-requested"]
	assert.True(t, ok)
}

func TestCompleteStepAdvancesPastCompletedPrefix(t *testing.T) {
	s, _ := tempStore(t)
	require.NoError(t, s.StartTour())

	// Completing a later step does not advance past an incomplete one.
	require.NoError(t, s.CompleteStep("fund-account"))
	assert.Equal(t, 0, s.Progress().StepIndex)

	// Filling the gap advances past the whole completed prefix.
	require.NoError(t, s.CompleteStep("connect-wallet"))
	assert.Equal(t, 2, s.Progress().StepIndex)
}

func TestCompletingAllStepsDeactivates(t *testing.T) {
	s, _ := tempStore(t)
	require.NoError(t, s.StartTour())

	for _, step := range Steps {
		require.NoError(t, s.CompleteStep(step))
	}

	p := s.Progress()
	assert.False(t, p.Active)
	assert.Equal(t, len(Steps), p.StepIndex)
}

func TestCompleteStepRejectsUnknown(t *testing.T) {
	s, _ := tempStore(t)
	assert.Error(t, s.CompleteStep("install-toolbar"))
}

func TestActionsSerializedAsSortedArray(t *testing.T) {
	s, path := tempStore(t)
	require.NoError(t, s.RecordAction("zebra"))
	require.NoError(t, s.RecordAction("alpha"))
	require.NoError(t, s.RecordAction("mango"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var wire struct {
		CompletedActions []string `json:"completedActions"`
	}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, []string{"alpha", "mango", "zebra"}, wire.CompletedActions)
}

func TestReset(t *testing.T) {
	s, path := tempStore(t)
	require.NoError(t, s.StartTour())
	require.NoError(t, s.CompleteStep("connect-wallet"))
	require.NoError(t, s.RecordAction("quote-requested"))

	require.NoError(t, s.Reset())

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	p := reloaded.Progress()
	assert.False(t, p.Active)
	assert.Empty(t, p.CompletedSteps)
	assert.Empty(t, p.CompletedActions)
}

func TestProgressSnapshotIsIsolated(t *testing.T) {
	s, _ := tempStore(t)
	require.NoError(t, s.CompleteStep("connect-wallet"))

	p := s.Progress()
	p.CompletedSteps["fund-account"] = true
	assert.False(t, s.Progress().CompletedSteps["fund-account"])
}

func TestCorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStore(path)
	assert.Error(t, err)
}
