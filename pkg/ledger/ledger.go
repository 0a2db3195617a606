package ledger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// FileName is the ledger file kept next to the tracker file.
const FileName = ".trackersync-state.yaml"

// Step names one remote or local side effect of creating an issue.
type Step string

const (
	StepCreate     Step = "create"
	StepLink       Step = "link"
	StepWriteLocal Step = "write_local"
)

// Steps lists the create sequence in execution order.
var Steps = []Step{StepCreate, StepLink, StepWriteLocal}

// Entry tracks the progress of one task through the create sequence.
type Entry struct {
	Number int    `yaml:"number"`
	NodeID string `yaml:"node_id"`
	Done   []Step `yaml:"done"`
}

// Has reports whether step was recorded.
func (e *Entry) Has(step Step) bool {
	for _, s := range e.Done {
		if s == step {
			return true
		}
	}
	return false
}

// Project is the board issues are linked into.
type Project struct {
	ID     string `yaml:"id"`
	Number int    `yaml:"number"`
	URL    string `yaml:"url"`
}

// Ledger persists completed steps keyed by tracker id, so a run that
// died between creating an issue and writing its number back can resume
// instead of creating a duplicate. It also keeps the open/closed state
// each linked task had when the last run finished.
type Ledger struct {
	Project *Project          `yaml:"project,omitempty"`
	Tasks   map[string]*Entry `yaml:"tasks"`
	States  map[string]string `yaml:"states,omitempty"`
	Path    string            `yaml:"-"`
	mu      sync.RWMutex
	dirty   bool
}

// PathFor returns the ledger location for a tracker file.
func PathFor(trackerPath string) string {
	return filepath.Join(filepath.Dir(trackerPath), FileName)
}

// Open loads the ledger at path, or returns an empty one if the file does
// not exist. An empty path gives an in-memory ledger that never saves.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		Tasks: make(map[string]*Entry),
		Path:  path,
	}
	if path == "" {
		return l, nil
	}
	if _, err := os.Stat(path); err == nil {
		if err := l.Load(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) Load() error {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to parse ledger %s: %w", l.Path, err)
	}
	if l.Tasks == nil {
		l.Tasks = make(map[string]*Entry)
	}
	return nil
}

// Save writes the ledger if it changed since the last save. An empty
// ledger removes the file.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty || l.Path == "" {
		return nil
	}

	if l.Project == nil && len(l.Tasks) == 0 && len(l.States) == 0 {
		if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
			return err
		}
		l.dirty = false
		return nil
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}
	if err := atomic.WriteFile(l.Path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	l.dirty = false
	return nil
}

// Get returns a copy of the entry for id.
func (l *Ledger) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.Tasks[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{Number: e.Number, NodeID: e.NodeID, Done: append([]Step(nil), e.Done...)}, true
}

// Done reports whether step was recorded for id.
func (l *Ledger) Done(id string, step Step) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.Tasks[id]
	return ok && e.Has(step)
}

// RecordCreate stores the issue created for id.
func (l *Ledger) RecordCreate(id string, number int, nodeID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Tasks[id] = &Entry{Number: number, NodeID: nodeID, Done: []Step{StepCreate}}
	l.dirty = true
}

// Mark records step for id. Once every step is recorded the entry is
// dropped; the tracker file then carries the link.
func (l *Ledger) Mark(id string, step Step) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.Tasks[id]
	if !ok || e.Has(step) {
		return
	}
	e.Done = append(e.Done, step)
	l.dirty = true
	for _, s := range Steps {
		if !e.Has(s) {
			return
		}
	}
	delete(l.Tasks, id)
}

// Remove forgets id.
func (l *Ledger) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.Tasks[id]; exists {
		delete(l.Tasks, id)
		l.dirty = true
	}
}

// Pending returns the ids with unfinished create sequences.
func (l *Ledger) Pending() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.Tasks))
	for id := range l.Tasks {
		ids = append(ids, id)
	}
	return ids
}

// ProjectInfo returns the recorded project, if any.
func (l *Ledger) ProjectInfo() (Project, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.Project == nil {
		return Project{}, false
	}
	return *l.Project, true
}

// SetProject records the project issues are linked into.
func (l *Ledger) SetProject(p Project) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Project != nil && *l.Project == p {
		return
	}
	l.Project = &p
	l.dirty = true
}

// SyncedStates returns a copy of the states recorded by the last run.
func (l *Ledger) SyncedStates() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.States))
	for id, state := range l.States {
		out[id] = state
	}
	return out
}

// RecordStates replaces the recorded states.
func (l *Ledger) RecordStates(states map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(states) == len(l.States) {
		same := true
		for id, state := range states {
			if prev, ok := l.States[id]; !ok || prev != state {
				same = false
				break
			}
		}
		if same {
			return
		}
	}
	l.States = make(map[string]string, len(states))
	for id, state := range states {
		l.States[id] = state
	}
	l.dirty = true
}
