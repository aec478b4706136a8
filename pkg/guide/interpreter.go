package guide

// Plan is the preset-derived part of the guide state.
type Plan struct {
	Disabled []Field     `json:"disabled"`
	Steps    []GuideStep `json:"steps"`
}

// Interpreter turns a preset selection into disabled fields and guide steps.
type Interpreter struct {
	rules []rule
}

// NewInterpreter returns an interpreter using the built-in rule table.
func NewInterpreter() *Interpreter {
	return &Interpreter{rules: defaultRules}
}

// Apply recomputes the preset-derived state of s for items in a single
// update, so observers never see a half-applied preset. Previous
// preset-derived state is discarded first; highlight state is untouched. It
// reports whether any guidance is active.
func (in *Interpreter) Apply(s *Store, items []HelpItem) bool {
	sel := newItemSet(items)

	s.Update(func(tx *Tx) {
		tx.Reset()
		for _, r := range in.rules {
			if r.when(sel) {
				r.then.apply(tx)
			} else {
				r.otherwise.apply(tx)
			}
		}
	})

	return len(sel) > 0
}

// Plan computes what Apply would produce for items without touching any
// caller-owned store.
func (in *Interpreter) Plan(items []HelpItem) Plan {
	var s Store
	in.Apply(&s, items)
	snap := s.Snapshot()
	return Plan{Disabled: snap.Disabled, Steps: snap.Steps}
}
