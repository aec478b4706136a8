package guide

import (
	"context"
	"slices"
	"sort"
	"sync"
)

// GuideStep is a named to-do item shown to the user, pointing at the form
// fields that still need input.
type GuideStep struct {
	Name   string     `json:"name"`
	Fields []FieldRef `json:"fields"`
}

func (g GuideStep) clone() GuideStep {
	return GuideStep{Name: g.Name, Fields: slices.Clone(g.Fields)}
}

// Snapshot is an immutable copy of the store at one version.
type Snapshot struct {
	Version     uint64      `json:"version"`
	Disabled    []Field     `json:"disabled"`
	Steps       []GuideStep `json:"steps"`
	Highlighted []Field     `json:"highlighted"`
	Tab         Tab         `json:"tab,omitempty"`
}

// IsDisabled reports whether f is disabled in the snapshot.
func (s Snapshot) IsDisabled(f Field) bool { return slices.Contains(s.Disabled, f) }

// IsHighlighted reports whether f is highlighted in the snapshot.
func (s Snapshot) IsHighlighted(f Field) bool { return slices.Contains(s.Highlighted, f) }

// Step returns the named step from the snapshot.
func (s Snapshot) Step(name string) (GuideStep, bool) {
	for _, g := range s.Steps {
		if g.Name == name {
			return g, true
		}
	}
	return GuideStep{}, false
}

// StepNames returns the step names in display order.
func (s Snapshot) StepNames() []string {
	names := make([]string, len(s.Steps))
	for i, g := range s.Steps {
		names[i] = g.Name
	}
	return names
}

// Store holds the guidance state of one form-editing session: disabled
// fields, guide steps, highlighted fields and the highlighted tab. It is safe
// for concurrent use and the zero value is ready to use.
//
// Every mutation that changes the state bumps the version, wakes goroutines
// blocked in Watch and calls subscribers synchronously after the lock is
// released.
type Store struct {
	mu          sync.RWMutex
	once        sync.Once
	signal      chan struct{}
	version     uint64
	disabled    map[Field]struct{}
	steps       []GuideStep
	highlighted map[Field]struct{}
	tab         Tab

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// init ensures internal structures are allocated.
func (s *Store) init() {
	s.once.Do(func() {
		s.signal = make(chan struct{})
		s.disabled = make(map[Field]struct{})
		s.highlighted = make(map[Field]struct{})
		s.subs = make(map[int]func(Snapshot))
	})
}

// Tx exposes the store mutations inside Update. It must not be retained after
// the Update callback returns.
type Tx struct {
	s       *Store
	changed bool
}

// DisableField marks f as dictated by the active preset.
func (tx *Tx) DisableField(f Field) {
	if _, ok := tx.s.disabled[f]; ok {
		return
	}
	tx.s.disabled[f] = struct{}{}
	tx.changed = true
}

// EnableField clears f's disabled flag.
func (tx *Tx) EnableField(f Field) {
	if _, ok := tx.s.disabled[f]; !ok {
		return
	}
	delete(tx.s.disabled, f)
	tx.changed = true
}

// guideStep looks up the named step as seen by the batch.
func (tx *Tx) guideStep(name string) (GuideStep, bool) {
	for _, g := range tx.s.steps {
		if g.Name == name {
			return g, true
		}
	}
	return GuideStep{}, false
}

// AddGuideStep replaces the named step in place, or appends it when absent.
// A step without field refs is removed instead, so a stored step always
// points at something.
func (tx *Tx) AddGuideStep(name string, refs ...FieldRef) {
	if len(refs) == 0 {
		tx.RemoveGuideStep(name)
		return
	}
	step := GuideStep{Name: name, Fields: slices.Clone(refs)}
	for i := range tx.s.steps {
		if tx.s.steps[i].Name == name {
			tx.s.steps[i] = step
			tx.changed = true
			return
		}
	}
	tx.s.steps = append(tx.s.steps, step)
	tx.changed = true
}

// RemoveGuideStep deletes the named step if present.
func (tx *Tx) RemoveGuideStep(name string) {
	for i := range tx.s.steps {
		if tx.s.steps[i].Name == name {
			tx.s.steps = slices.Delete(tx.s.steps, i, i+1)
			tx.changed = true
			return
		}
	}
}

// HighlightFields adds fs to the highlighted set.
func (tx *Tx) HighlightFields(fs ...Field) {
	for _, f := range fs {
		if _, ok := tx.s.highlighted[f]; ok {
			continue
		}
		tx.s.highlighted[f] = struct{}{}
		tx.changed = true
	}
}

// ClearHighlightedFields empties the highlighted set.
func (tx *Tx) ClearHighlightedFields() {
	if len(tx.s.highlighted) == 0 {
		return
	}
	clear(tx.s.highlighted)
	tx.changed = true
}

// SelectTab sets the tab the form should switch to.
func (tx *Tx) SelectTab(t Tab) {
	if tx.s.tab == t {
		return
	}
	tx.s.tab = t
	tx.changed = true
}

// ClearSelectedTab unsets the highlighted tab.
func (tx *Tx) ClearSelectedTab() { tx.SelectTab(TabNone) }

// Reset empties the disabled fields and guide steps. Highlight state is left
// alone.
func (tx *Tx) Reset() {
	if len(tx.s.disabled) == 0 && len(tx.s.steps) == 0 {
		return
	}
	clear(tx.s.disabled)
	tx.s.steps = nil
	tx.changed = true
}

// Update runs fn with exclusive access to the store. Observers are notified
// once, after fn returns, if anything changed.
func (s *Store) Update(fn func(tx *Tx)) {
	s.init()

	s.mu.Lock()
	tx := &Tx{s: s}
	fn(tx)
	if !tx.changed {
		s.mu.Unlock()
		return
	}
	s.version++
	close(s.signal)
	s.signal = make(chan struct{})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// DisableField marks f as disabled.
func (s *Store) DisableField(f Field) { s.Update(func(tx *Tx) { tx.DisableField(f) }) }

// EnableField clears f's disabled flag.
func (s *Store) EnableField(f Field) { s.Update(func(tx *Tx) { tx.EnableField(f) }) }

// AddGuideStep inserts or replaces the named step.
func (s *Store) AddGuideStep(name string, refs ...FieldRef) {
	s.Update(func(tx *Tx) { tx.AddGuideStep(name, refs...) })
}

// RemoveGuideStep deletes the named step.
func (s *Store) RemoveGuideStep(name string) { s.Update(func(tx *Tx) { tx.RemoveGuideStep(name) }) }

// HighlightFields adds fs to the highlighted set.
func (s *Store) HighlightFields(fs ...Field) { s.Update(func(tx *Tx) { tx.HighlightFields(fs...) }) }

// ClearHighlightedFields empties the highlighted set.
func (s *Store) ClearHighlightedFields() { s.Update(func(tx *Tx) { tx.ClearHighlightedFields() }) }

// SelectTab sets the highlighted tab.
func (s *Store) SelectTab(t Tab) { s.Update(func(tx *Tx) { tx.SelectTab(t) }) }

// ClearSelectedTab unsets the highlighted tab.
func (s *Store) ClearSelectedTab() { s.Update(func(tx *Tx) { tx.ClearSelectedTab() }) }

// Reset empties the disabled fields and guide steps.
func (s *Store) Reset() { s.Update(func(tx *Tx) { tx.Reset() }) }

// IsDisabled reports whether f is disabled.
func (s *Store) IsDisabled(f Field) bool {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.disabled[f]
	return ok
}

// DisabledFields returns the disabled fields sorted by path.
func (s *Store) DisabledFields() []Field {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedFields(s.disabled)
}

// GuideSteps returns a copy of the active steps in display order.
func (s *Store) GuideSteps() []GuideStep {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneSteps(s.steps)
}

// GuideStep returns a copy of the named step.
func (s *Store) GuideStep(name string) (GuideStep, bool) {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.steps {
		if g.Name == name {
			return g.clone(), true
		}
	}
	return GuideStep{}, false
}

// IsHighlighted reports whether f is highlighted.
func (s *Store) IsHighlighted(f Field) bool {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.highlighted[f]
	return ok
}

// HighlightedFields returns the highlighted fields sorted by path.
func (s *Store) HighlightedFields() []Field {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedFields(s.highlighted)
}

// HighlightedTab returns the tab the form should switch to, if any.
func (s *Store) HighlightedTab() Tab {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tab
}

// Version returns the current state version.
func (s *Store) Version() uint64 {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.init()
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:     s.version,
		Disabled:    sortedFields(s.disabled),
		Steps:       cloneSteps(s.steps),
		Highlighted: sortedFields(s.highlighted),
		Tab:         s.tab,
	}
}

// Subscribe registers fn to be called with a snapshot after every change.
// Callbacks run synchronously on the goroutine that made the change, in
// registration order. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.init()

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Watch blocks until the store version is greater than after or ctx is
// cancelled, and returns the snapshot at that point.
func (s *Store) Watch(ctx context.Context, after uint64) (Snapshot, error) {
	s.init()

	for {
		s.mu.RLock()
		if s.version > after {
			snap := s.snapshotLocked()
			s.mu.RUnlock()
			return snap, nil
		}
		sig := s.signal
		s.mu.RUnlock()

		select {
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		case <-sig:
		}
	}
}

func sortedFields(m map[Field]struct{}) []Field {
	out := make([]Field, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func cloneSteps(steps []GuideStep) []GuideStep {
	out := make([]GuideStep, len(steps))
	for i, g := range steps {
		out[i] = g.clone()
	}
	return out
}
