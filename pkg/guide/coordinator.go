package guide

import (
	"slices"

	"go.uber.org/zap"
)

// Coordinator runs one guidance session over a Store: preset selection,
// step hover feedback and teardown.
type Coordinator struct {
	store  *Store
	interp *Interpreter
	logger *zap.Logger
	items  []HelpItem
	active bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger used for session events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithInterpreter replaces the default interpreter.
func WithInterpreter(in *Interpreter) Option {
	return func(c *Coordinator) {
		if in != nil {
			c.interp = in
		}
	}
}

// NewCoordinator creates a coordinator over store. A nil store gets a fresh
// one.
func NewCoordinator(store *Store, opts ...Option) *Coordinator {
	if store == nil {
		store = &Store{}
	}
	c := &Coordinator{
		store:  store,
		interp: NewInterpreter(),
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Store returns the underlying store.
func (c *Coordinator) Store() *Store { return c.store }

// SelectPreset recomputes the guidance for items. An empty selection clears
// all preset-derived state. It reports whether guidance is active.
func (c *Coordinator) SelectPreset(items []HelpItem) bool {
	c.items = slices.Clone(items)
	c.active = c.interp.Apply(c.store, items)

	label := ""
	if p, ok := FindPreset(items); ok {
		label = p.Label
	}
	c.logger.Debug("guide: preset selected",
		zap.Any("items", items),
		zap.String("preset", label),
		zap.Strings("steps", c.store.Snapshot().StepNames()),
	)

	return c.active
}

// Selection returns the items of the current selection.
func (c *Coordinator) Selection() []HelpItem { return slices.Clone(c.items) }

// Active reports whether a non-empty preset is selected.
func (c *Coordinator) Active() bool { return c.active }

// HoverStep highlights exactly the fields of the named step and suggests the
// last tab named by its refs. Unknown steps only clear the highlight.
func (c *Coordinator) HoverStep(name string) {
	c.store.Update(func(tx *Tx) {
		tx.ClearHighlightedFields()
		step, ok := tx.guideStep(name)
		if !ok {
			return
		}
		tab := TabNone
		for _, ref := range step.Fields {
			tx.HighlightFields(ref.Field)
			if ref.Tab != TabNone {
				tab = ref.Tab
			}
		}
		if tab != TabNone {
			tx.SelectTab(tab)
		}
	})
}

// LeaveStep clears the highlighted fields. The tab suggestion stays until
// another step is hovered.
func (c *Coordinator) LeaveStep() {
	c.store.ClearHighlightedFields()
}

// Close ends the guidance session by clearing the preset-derived state.
func (c *Coordinator) Close() {
	c.items = nil
	c.active = false
	c.store.Reset()
	c.logger.Debug("guide: session closed")
}

// State returns a snapshot of the store.
func (c *Coordinator) State() Snapshot { return c.store.Snapshot() }
