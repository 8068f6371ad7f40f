// Package validation applies field validation rules to candidate values,
// validates whole submissions against the visibility of each field, and checks
// schemas for configuration errors.
//
// Rules are data. The same rule set drives inline validation while the user
// types and the authoritative check at submit time, and both produce identical
// results for identical inputs.
package validation
