package visibility

import (
	"hash/fnv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

const defaultCacheSize = 4096

// Option configures an Engine.
type Option func(*Engine)

// WithSink routes configuration diagnostics to sink.
func WithSink(sink diag.Sink) Option {
	return func(e *Engine) {
		e.sink = diag.OrNop(sink)
	}
}

// WithOperators replaces the operator registry.
func WithOperators(ops *Operators) Option {
	return func(e *Engine) {
		if ops != nil {
			e.operators = ops
		}
	}
}

// WithCacheSize bounds the memo cache. Zero or a negative size disables
// memoisation.
func WithCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// Engine evaluates every field condition of one schema. The schema is cloned
// at construction so later builder edits never leak into an evaluation pass.
// An Engine is safe for concurrent use.
type Engine struct {
	fields    []model.FieldDefinition
	index     map[string]int
	resolver  Resolver
	compiled  []compiledCondition
	cycles    [][]string
	operators *Operators
	sink      diag.Sink

	cacheSize int
	mu        sync.Mutex
	cache     map[memoKey]State
}

type compiledCondition struct {
	spec       *model.ConditionSpec
	rules      []compiledRule
	program    *vm.Program
	exprFailed bool
	bindings   []binding
	cyclic     bool
	deps       []string
}

type compiledRule struct {
	rule       model.ConditionRule
	target     string
	resolved   bool
	comparator Comparator
}

// binding maps an expression identifier onto the field whose value it reads.
type binding struct {
	name   string
	target string
}

type memoKey struct {
	field string
	hash  uint64
}

// NewEngine prepares a schema for evaluation: it resolves references, compiles
// expressions and runs cycle detection once. Configuration problems are
// reported to the sink here, never during evaluation.
func NewEngine(schema model.FormSchema, opts ...Option) *Engine {
	e := &Engine{
		operators: DefaultOperators(),
		sink:      diag.Nop,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.fields = schema.Clone().Fields
	e.index = make(map[string]int, len(e.fields))
	for i, field := range e.fields {
		if _, exists := e.index[field.ID]; exists {
			diag.Error(e.sink, diag.CodeDuplicateFieldID, field.ID, "field id %q is declared more than once", field.ID)
			continue
		}
		e.index[field.ID] = i
	}
	e.resolver = NewResolver(e.fields)
	e.compiled = make([]compiledCondition, len(e.fields))

	ids := make([]string, 0, len(e.fields))
	var edges []Edge
	for i, field := range e.fields {
		ids = append(ids, field.ID)
		e.compiled[i] = e.compile(field)
		for _, dep := range e.compiled[i].deps {
			edges = append(edges, Edge{From: field.ID, To: dep})
		}
	}

	e.cycles = NewGraph(ids, edges).Cycles()
	for _, cycle := range e.cycles {
		if len(cycle) == 1 {
			diag.Error(e.sink, diag.CodeSelfReference, cycle[0], "condition references its own field; treating field as unconditional")
		} else {
			diag.Error(e.sink, diag.CodeDependencyCycle, cycle[0], "dependency cycle between %s; treating these fields as unconditional", strings.Join(cycle, ", "))
		}
		for _, id := range cycle {
			if idx, ok := e.index[id]; ok {
				e.compiled[idx].cyclic = true
			}
		}
	}

	if e.cacheSize > 0 {
		e.cache = make(map[memoKey]State)
	}
	return e
}

func (e *Engine) compile(field model.FieldDefinition) compiledCondition {
	out := compiledCondition{spec: field.Condition}
	if field.Condition.Empty() {
		return out
	}
	depSeen := make(map[string]struct{})
	addDep := func(id string) {
		if _, exists := depSeen[id]; exists {
			return
		}
		depSeen[id] = struct{}{}
		out.deps = append(out.deps, id)
	}

	for _, rule := range field.Condition.Rules {
		cr := compiledRule{rule: rule}
		if idx, ok := e.resolver.Resolve(rule.Field); ok {
			cr.resolved = true
			cr.target = e.fields[idx].ID
			addDep(cr.target)
		} else {
			diag.Error(e.sink, diag.CodeUnresolvedReference, field.ID, "condition references unknown field %q; rule never matches", rule.Field)
		}
		if cmp, ok := e.operators.Lookup(rule.Operator); ok {
			cr.comparator = cmp
		} else {
			diag.Error(e.sink, diag.CodeUnknownOperator, field.ID, "unknown operator %q; rule never matches", rule.Operator)
		}
		out.rules = append(out.rules, cr)
	}

	source := strings.TrimSpace(field.Condition.Expression)
	if source == "" {
		return out
	}
	names, err := ExpressionIdentifiers(source)
	if err != nil {
		out.exprFailed = true
		diag.Error(e.sink, diag.CodeInvalidExpression, field.ID, "condition expression does not parse: %v", err)
		return out
	}
	for _, name := range names {
		if name == extrasIdentifier {
			continue
		}
		idx, ok := e.resolver.Resolve(name)
		if !ok {
			diag.Error(e.sink, diag.CodeUnresolvedReference, field.ID, "expression references unknown field %q", name)
			continue
		}
		target := e.fields[idx].ID
		out.bindings = append(out.bindings, binding{name: name, target: target})
		addDep(target)
	}
	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		out.exprFailed = true
		diag.Error(e.sink, diag.CodeInvalidExpression, field.ID, "condition expression does not compile: %v", err)
		return out
	}
	out.program = program
	return out
}

// Cycles returns the dependency cycles found at construction.
func (e *Engine) Cycles() [][]string {
	out := make([][]string, len(e.cycles))
	for i, cycle := range e.cycles {
		out[i] = append([]string(nil), cycle...)
	}
	return out
}

// Fields returns the engine's snapshot of the schema fields.
func (e *Engine) Fields() []model.FieldDefinition {
	return e.fields
}

// State evaluates the field's condition against ctx. Unknown ids are reported
// hidden and disabled.
func (e *Engine) State(fieldID string, ctx Context) State {
	idx, ok := e.index[fieldID]
	if !ok {
		diag.Warn(e.sink, diag.CodeUnknownField, fieldID, "state requested for a field that is not part of the schema")
		return State{}
	}
	cond := &e.compiled[idx]
	if cond.spec.Empty() || cond.cyclic {
		return State{Visible: true, Enabled: true}
	}

	key, cacheable := e.memoKey(fieldID, cond, ctx)
	if cacheable {
		e.mu.Lock()
		state, hit := e.cache[key]
		e.mu.Unlock()
		if hit {
			return state
		}
	}

	state := e.evaluate(fieldID, cond, ctx)

	if cacheable {
		e.mu.Lock()
		if len(e.cache) >= e.cacheSize {
			e.cache = make(map[memoKey]State)
		}
		e.cache[key] = state
		e.mu.Unlock()
	}
	return state
}

// Visible reports whether the field is shown for the given values.
func (e *Engine) Visible(fieldID string, values map[string]any) bool {
	return e.State(fieldID, Context{Values: values}).Visible
}

// Enabled reports whether the field accepts input for the given values.
func (e *Engine) Enabled(fieldID string, values map[string]any) bool {
	return e.State(fieldID, Context{Values: values}).Enabled
}

// Evaluate returns the state of every field keyed by id.
func (e *Engine) Evaluate(ctx Context) map[string]State {
	out := make(map[string]State, len(e.fields))
	for id := range e.index {
		out[id] = e.State(id, ctx)
	}
	return out
}

func (e *Engine) evaluate(fieldID string, cond *compiledCondition, ctx Context) State {
	result := e.evaluateRules(cond, ctx) && e.evaluateExpression(fieldID, cond, ctx)
	action := cond.spec.Action
	return State{
		Visible: !action.ControlsVisibility() || result,
		Enabled: !action.ControlsEnablement() || result,
	}
}

func (e *Engine) evaluateRules(cond *compiledCondition, ctx Context) bool {
	if len(cond.rules) == 0 {
		return true
	}
	anyMatch := cond.spec.Logic.Normalize() == model.LogicOr
	for _, rule := range cond.rules {
		matched := false
		if rule.resolved && rule.comparator != nil {
			matched = rule.comparator(e.valueOf(rule.target, ctx.Values), rule.rule.Value)
		}
		if anyMatch && matched {
			return true
		}
		if !anyMatch && !matched {
			return false
		}
	}
	return !anyMatch
}

func (e *Engine) evaluateExpression(fieldID string, cond *compiledCondition, ctx Context) bool {
	if cond.exprFailed {
		return false
	}
	if cond.program == nil {
		return true
	}
	env := make(map[string]any, len(cond.bindings)+1)
	for _, b := range cond.bindings {
		env[b.name] = e.valueOf(b.target, ctx.Values)
	}
	extras := ctx.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	env[extrasIdentifier] = extras

	out, err := expr.Run(cond.program, env)
	if err != nil {
		diag.Warn(e.sink, diag.CodeInvalidExpression, fieldID, "condition expression failed: %v", err)
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

// valueOf reads a field's current value by key, falling back to the raw id.
func (e *Engine) valueOf(id string, values map[string]any) any {
	idx, ok := e.index[id]
	if !ok {
		return nil
	}
	if v, ok := lookupMap(values, e.fields[idx].Key()); ok {
		return v
	}
	if v, ok := lookupMap(values, id); ok {
		return v
	}
	return nil
}

// memoKey hashes the values a condition depends on. Conditions with
// expressions also hash Extras. Values that cannot be encoded are not cached.
func (e *Engine) memoKey(fieldID string, cond *compiledCondition, ctx Context) (memoKey, bool) {
	if e.cache == nil {
		return memoKey{}, false
	}
	snapshot := make([]any, 0, len(cond.deps)+1)
	for _, dep := range cond.deps {
		snapshot = append(snapshot, e.valueOf(dep, ctx.Values))
	}
	if cond.program != nil {
		snapshot = append(snapshot, ctx.Extras)
	}
	encoded, err := gojson.Marshal(snapshot)
	if err != nil {
		return memoKey{}, false
	}
	h := fnv.New64a()
	_, _ = h.Write(encoded)
	return memoKey{field: fieldID, hash: h.Sum64()}, true
}

// EvaluateVisibility is the one-shot form of Engine.State for callers that
// hold a single field and the full field list. It runs cycle detection over
// allFields on every call; use an Engine when evaluating repeatedly.
func EvaluateVisibility(field model.FieldDefinition, allFields []model.FieldDefinition, values map[string]any, opts ...Option) bool {
	return evaluateOnce(field, allFields, values, opts).Visible
}

// EvaluateEnablement reports whether field accepts input for values.
func EvaluateEnablement(field model.FieldDefinition, allFields []model.FieldDefinition, values map[string]any, opts ...Option) bool {
	return evaluateOnce(field, allFields, values, opts).Enabled
}

func evaluateOnce(field model.FieldDefinition, allFields []model.FieldDefinition, values map[string]any, opts []Option) State {
	if field.Condition.Empty() {
		return State{Visible: true, Enabled: true}
	}
	fields := make([]model.FieldDefinition, len(allFields))
	copy(fields, allFields)
	for i := range fields {
		if fields[i].ID == field.ID {
			fields[i] = field
			break
		}
	}
	options := make([]Option, 0, len(opts)+1)
	options = append(options, opts...)
	options = append(options, WithCacheSize(0))
	engine := NewEngine(model.FormSchema{Fields: fields}, options...)
	return engine.State(field.ID, Context{Values: values})
}
