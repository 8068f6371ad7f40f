package visibility

// State is the runtime outcome of a field's condition.
type State struct {
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

// Evaluator determines whether a field is visible and enabled given the
// current form values and optional context such as user roles or feature
// flags.
type Evaluator interface {
	State(fieldID string, ctx Context) State
}

// Context provides inputs to an Evaluator. Values holds the current FormValues
// keyed by field key (name-or-id) while Extras allows callers to inject
// arbitrary context that expression conditions can read via `extras.<key>`.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldID string, ctx Context) State

// State delegates to the underlying function.
func (fn EvaluatorFunc) State(fieldID string, ctx Context) State {
	return fn(fieldID, ctx)
}

// AlwaysVisible is an Evaluator that shows and enables every field.
var AlwaysVisible Evaluator = EvaluatorFunc(func(string, Context) State {
	return State{Visible: true, Enabled: true}
})
