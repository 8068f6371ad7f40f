package visibility

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Comparator decides whether the current value of a referenced field satisfies
// a rule's target. A missing value arrives as nil.
type Comparator func(actual, target any) bool

// Operators is a registry of comparators keyed by operator name. It is safe
// for concurrent use.
type Operators struct {
	mu    sync.RWMutex
	table map[model.Operator]Comparator
}

// NewOperators returns an empty registry.
func NewOperators() *Operators {
	return &Operators{table: make(map[model.Operator]Comparator)}
}

// DefaultOperators returns a registry preloaded with the built-in operators.
func DefaultOperators() *Operators {
	ops := NewOperators()
	ops.Register(model.OperatorEquals, LooseEqual)
	ops.Register(model.OperatorNotEquals, func(actual, target any) bool { return !LooseEqual(actual, target) })
	ops.Register(model.OperatorIn, compareIn)
	ops.Register(model.OperatorNotIn, func(actual, target any) bool { return !compareIn(actual, target) })
	ops.Register(model.OperatorGreater, ordered(func(c int) bool { return c > 0 }))
	ops.Register(model.OperatorGreaterOrEq, ordered(func(c int) bool { return c >= 0 }))
	ops.Register(model.OperatorLess, ordered(func(c int) bool { return c < 0 }))
	ops.Register(model.OperatorLessOrEq, ordered(func(c int) bool { return c <= 0 }))
	ops.Register(model.OperatorContains, compareContains)
	ops.Register(model.OperatorEmpty, func(actual, _ any) bool { return isEmpty(actual) })
	ops.Register(model.OperatorNotEmpty, func(actual, _ any) bool { return !isEmpty(actual) })
	return ops
}

// Register adds or replaces the comparator for op.
func (o *Operators) Register(op model.Operator, cmp Comparator) {
	if cmp == nil {
		return
	}
	key := normalizeOperator(op)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.table == nil {
		o.table = make(map[model.Operator]Comparator)
	}
	o.table[key] = cmp
}

// Lookup returns the comparator registered for op. An empty operator resolves
// to equality.
func (o *Operators) Lookup(op model.Operator) (Comparator, bool) {
	key := normalizeOperator(op)
	o.mu.RLock()
	defer o.mu.RUnlock()
	cmp, ok := o.table[key]
	return cmp, ok
}

// Names lists the registered operators in sorted order.
func (o *Operators) Names() []model.Operator {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]model.Operator, 0, len(o.table))
	for op := range o.table {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func normalizeOperator(op model.Operator) model.Operator {
	trimmed := strings.TrimSpace(string(op))
	switch trimmed {
	case "", "=", "===", "eq", "equals":
		return model.OperatorEquals
	case "!==", "neq", "not_equals":
		return model.OperatorNotEquals
	}
	return model.Operator(trimmed)
}

// LooseEqual compares a field value with a rule target the way string-typed
// form inputs are compared:
//   - a missing value equals only nil, "" and false;
//   - numbers compare numerically, coercing numeric strings;
//   - booleans compare against "true"/"false";
//   - a multi-value input matches when any element matches.
func LooseEqual(actual, target any) bool {
	if actual == nil {
		if target == nil {
			return true
		}
		switch t := target.(type) {
		case string:
			return t == ""
		case bool:
			return !t
		}
		return false
	}
	if list, ok := asList(actual); ok {
		if _, targetIsList := asList(target); targetIsList {
			return sameElements(list, target)
		}
		if len(list) == 0 {
			return LooseEqual(nil, target)
		}
		for _, item := range list {
			if item != nil && scalarEqual(item, target) {
				return true
			}
		}
		return false
	}
	if target == nil {
		if s, ok := actual.(string); ok {
			return s == ""
		}
		return false
	}
	return scalarEqual(actual, target)
}

func scalarEqual(actual, target any) bool {
	_, actualBool := actual.(bool)
	_, targetBool := target.(bool)
	if actualBool || targetBool {
		a, okA := coerceBool(actual)
		b, okB := coerceBool(target)
		return okA && okB && a == b
	}
	if isNumeric(actual) || isNumeric(target) {
		a, okA := coerceNumber(actual)
		b, okB := coerceNumber(target)
		if okA && okB {
			return a == b
		}
	}
	return coerceString(actual) == coerceString(target)
}

func sameElements(list []any, target any) bool {
	other, _ := asList(target)
	if len(list) != len(other) {
		return false
	}
	for i := range list {
		if !scalarEqual(list[i], other[i]) {
			return false
		}
	}
	return true
}

// compareIn reports whether actual is one of the target's elements. A target
// string is split on commas so authors can write "a,b,c". Multi-value inputs
// match when any element is a member.
func compareIn(actual, target any) bool {
	set, ok := asList(target)
	if !ok {
		s, isString := target.(string)
		if !isString {
			return false
		}
		for _, part := range strings.Split(s, ",") {
			set = append(set, strings.TrimSpace(part))
		}
	}
	candidates, isList := asList(actual)
	if !isList {
		if actual == nil {
			return false
		}
		candidates = []any{actual}
	}
	for _, candidate := range candidates {
		for _, member := range set {
			if candidate != nil && scalarEqual(candidate, member) {
				return true
			}
		}
	}
	return false
}

func compareContains(actual, target any) bool {
	if list, ok := asList(actual); ok {
		for _, item := range list {
			if item != nil && scalarEqual(item, target) {
				return true
			}
		}
		return false
	}
	s, ok := actual.(string)
	if !ok || target == nil {
		return false
	}
	return strings.Contains(s, coerceString(target))
}

// ordered builds a range comparator. Numbers compare numerically; two
// non-numeric strings compare lexically so ISO dates order correctly. Missing
// or incomparable values never satisfy the comparison.
func ordered(accept func(int) bool) Comparator {
	return func(actual, target any) bool {
		if actual == nil || target == nil {
			return false
		}
		if a, okA := coerceNumber(actual); okA {
			if b, okB := coerceNumber(target); okB {
				switch {
				case a < b:
					return accept(-1)
				case a > b:
					return accept(1)
				default:
					return accept(0)
				}
			}
		}
		as, okA := actual.(string)
		bs, okB := target.(string)
		if !okA || !okB || as == "" || bs == "" {
			return false
		}
		return accept(strings.Compare(as, bs))
	}
}
