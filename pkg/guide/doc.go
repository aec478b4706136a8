// Package guide drives the preset-based guidance of the model API form. A
// Preset is a bundle of HelpItem flags describing one common HTTP integration
// shape. The Interpreter turns a preset into a set of fields the form must
// lock and an ordered list of GuideSteps pointing at the fields the user still
// has to fill in. All of it lives in a Store that form widgets observe.
//
// A Coordinator ties the pieces together for one editing session: selecting a
// preset recomputes the derived state from scratch, hovering a step
// highlights its fields and suggests a tab, and closing the panel resets the
// preset-derived state.
package guide
