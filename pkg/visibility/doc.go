// Package visibility evaluates field conditions: which fields of a form are
// shown and which accept input for a given snapshot of form values.
//
// Conditions are rule lists combined with AND or OR, optionally AND-ed with an
// expr-lang expression over field keys. References are resolved and cycles
// detected once per schema when an Engine is built; evaluation itself never
// fails and never recurses into other conditions. Broken references compare
// false, and every field that takes part in a dependency cycle is treated as
// unconditional.
package visibility
