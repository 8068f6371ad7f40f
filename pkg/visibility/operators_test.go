package visibility

import (
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func TestLooseEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		actual any
		target any
		want   bool
	}{
		{"same string", "MALE", "MALE", true},
		{"different string", "FEMALE", "MALE", false},
		{"missing equals empty string", nil, "", true},
		{"missing equals false", nil, false, true},
		{"missing equals nil", nil, nil, true},
		{"missing never equals value", nil, "MALE", false},
		{"missing never equals zero", nil, 0, false},
		{"numeric string vs number", "42", 42, true},
		{"json float vs int", float64(3), 3, true},
		{"numeric mismatch", "4", 42, false},
		{"bool vs string", true, "true", true},
		{"bool string mismatch", "false", true, false},
		{"non-bool string vs bool", "yes", true, false},
		{"multi-select any element", []any{"a", "b"}, "b", true},
		{"multi-select strings", []string{"a", "b"}, "c", false},
		{"empty multi-select equals empty", []any{}, "", true},
		{"list vs list", []any{"a", "b"}, []any{"a", "b"}, true},
		{"empty string vs nil target", "", nil, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := LooseEqual(tc.actual, tc.target); got != tc.want {
				t.Fatalf("LooseEqual(%#v, %#v) = %v, want %v", tc.actual, tc.target, got, tc.want)
			}
		})
	}
}

func TestDefaultOperators(t *testing.T) {
	t.Parallel()

	ops := DefaultOperators()
	cases := []struct {
		op     model.Operator
		actual any
		target any
		want   bool
	}{
		{"", "a", "a", true},
		{"=", "a", "a", true},
		{model.OperatorNotEquals, "a", "b", true},
		{model.OperatorNotEquals, nil, "", false},
		{model.OperatorIn, "b", []any{"a", "b"}, true},
		{model.OperatorIn, "b", "a, b ,c", true},
		{model.OperatorIn, nil, []any{"a"}, false},
		{model.OperatorIn, []any{"x", "a"}, []string{"a"}, true},
		{model.OperatorNotIn, "z", []any{"a", "b"}, true},
		{model.OperatorNotIn, nil, []any{"a"}, true},
		{model.OperatorGreater, "20", 18, true},
		{model.OperatorGreater, 18, 18, false},
		{model.OperatorGreaterOrEq, 18, "18", true},
		{model.OperatorLess, "2024-01-02", "2024-02-01", true},
		{model.OperatorLessOrEq, nil, 5, false},
		{model.OperatorLess, "abc", 5, false},
		{model.OperatorContains, "hello world", "world", true},
		{model.OperatorContains, []any{"red", "green"}, "green", true},
		{model.OperatorContains, nil, "x", false},
		{model.OperatorEmpty, "  ", nil, true},
		{model.OperatorEmpty, false, nil, true},
		{model.OperatorEmpty, []any{}, nil, true},
		{model.OperatorEmpty, 0, nil, false},
		{model.OperatorNotEmpty, "x", nil, true},
	}

	for _, tc := range cases {
		cmp, ok := ops.Lookup(tc.op)
		if !ok {
			t.Fatalf("operator %q not registered", tc.op)
		}
		if got := cmp(tc.actual, tc.target); got != tc.want {
			t.Fatalf("%q(%#v, %#v) = %v, want %v", tc.op, tc.actual, tc.target, got, tc.want)
		}
	}

	if _, ok := ops.Lookup("matches"); ok {
		t.Fatalf("unexpected operator registered")
	}
}

func TestOperatorsRegisterCustom(t *testing.T) {
	t.Parallel()

	ops := DefaultOperators()
	ops.Register("starts_with", func(actual, target any) bool {
		s, _ := actual.(string)
		p, _ := target.(string)
		return p != "" && len(s) >= len(p) && s[:len(p)] == p
	})

	cmp, ok := ops.Lookup("starts_with")
	if !ok || !cmp("prefix-value", "prefix") {
		t.Fatalf("custom operator not applied")
	}
	names := ops.Names()
	if len(names) != 12 {
		t.Fatalf("expected 12 operators, got %d: %v", len(names), names)
	}
}
