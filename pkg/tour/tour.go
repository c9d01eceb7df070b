// Package tour persists onboarding progress. The state is process-wide but
// never ambient: callers hold an explicit Store and every transition is
// written through to disk.
package tour

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DefaultFileName is the fixed storage key for onboarding progress.
const DefaultFileName = ".omniswap-tour.json"

// Steps of the guided tour, in order.
var Steps = []string{
	"connect-wallet",
	"fund-account",
	"first-quote",
	"first-swap",
}

// Progress is the persisted onboarding state.
type Progress struct {
	Active         bool            `json:"active"`
	StepIndex      int             `json:"stepIndex"`
	CompletedSteps map[string]bool `json:"completedSteps"`
	HasSeenWelcome bool            `json:"hasSeenWelcome"`

	// CompletedActions is a set, serialized as a sorted array.
	CompletedActions map[string]struct{} `json:"-"`
}

type progressWire struct {
	Active           bool            `json:"active"`
	StepIndex        int             `json:"stepIndex"`
	CompletedSteps   map[string]bool `json:"completedSteps"`
	HasSeenWelcome   bool            `json:"hasSeenWelcome"`
	CompletedActions []string        `json:"completedActions"`
}

// MarshalJSON writes the action set as a sorted array.
func (p Progress) MarshalJSON() ([]byte, error) {
	actions := make([]string, 0, len(p.CompletedActions))
	for action := range p.CompletedActions {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return json.Marshal(progressWire{
		Active:           p.Active,
		StepIndex:        p.StepIndex,
		CompletedSteps:   p.CompletedSteps,
		HasSeenWelcome:   p.HasSeenWelcome,
		CompletedActions: actions,
	})
}

// UnmarshalJSON restores the action array back into a set.
func (p *Progress) UnmarshalJSON(data []byte) error {
	var wire progressWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	p.Active = wire.Active
	p.StepIndex = wire.StepIndex
	p.CompletedSteps = wire.CompletedSteps
	p.HasSeenWelcome = wire.HasSeenWelcome
	p.CompletedActions = make(map[string]struct{}, len(wire.CompletedActions))
	for _, action := range wire.CompletedActions {
		p.CompletedActions[action] = struct{}{}
	}
	return nil
}

func defaultProgress() Progress {
	return Progress{
		CompletedSteps:   make(map[string]bool),
		CompletedActions: make(map[string]struct{}),
	}
}

// Store loads, mutates, and persists onboarding progress.
type Store struct {
	filePath string

	mu       sync.Mutex
	progress Progress
}

// NewStore opens (or initializes) the progress file. A missing file yields
// default progress and is created on the first transition.
func NewStore(filePath string) (*Store, error) {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	s := &Store{filePath: filePath, progress: defaultProgress()}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to load tour progress: %w", err)
	}
	if err := json.Unmarshal(data, &s.progress); err != nil {
		return nil, fmt.Errorf("failed to parse tour progress: %w", err)
	}
	if s.progress.CompletedSteps == nil {
		s.progress.CompletedSteps = make(map[string]bool)
	}
	if s.progress.CompletedActions == nil {
		s.progress.CompletedActions = make(map[string]struct{})
	}
	return s, nil
}

// Progress returns a snapshot of the current state.
func (s *Store) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() Progress {
	cp := s.progress
	cp.CompletedSteps = make(map[string]bool, len(s.progress.CompletedSteps))
	for k, v := range s.progress.CompletedSteps {
		cp.CompletedSteps[k] = v
	}
	cp.CompletedActions = make(map[string]struct{}, len(s.progress.CompletedActions))
	for k := range s.progress.CompletedActions {
		cp.CompletedActions[k] = struct{}{}
	}
	return cp
}

// StartTour activates the tour at the first step.
func (s *Store) StartTour() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.Active = true
	s.progress.StepIndex = 0
	return s.save()
}

// MarkWelcomeSeen records that the welcome screen was shown.
func (s *Store) MarkWelcomeSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.HasSeenWelcome = true
	return s.save()
}

// CompleteStep marks a step done and advances the index past any completed
// prefix. Completing the last step deactivates the tour.
func (s *Store) CompleteStep(step string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := false
	for _, name := range Steps {
		if name == step {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown tour step '%s'", step)
	}

	s.progress.CompletedSteps[step] = true
	for s.progress.StepIndex < len(Steps) && s.progress.CompletedSteps[Steps[s.progress.StepIndex]] {
		s.progress.StepIndex++
	}
	if s.progress.StepIndex >= len(Steps) {
		s.progress.Active = false
	}
	return s.save()
}

// RecordAction adds a named action to the completed set.
func (s *Store) RecordAction(action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress.CompletedActions[action] = struct{}{}
	return s.save()
}

// Reset wipes progress back to the defaults.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = defaultProgress()
	return s.save()
}

// save writes atomically: temp file then rename.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.progress, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tour progress: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write tour progress: %w", err)
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
