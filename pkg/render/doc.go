// Package render defines the renderer contract and builds render plans: the
// visible fields of a schema for a set of values, grouped into rows and
// annotated with enabled state, current value and server errors.
package render
