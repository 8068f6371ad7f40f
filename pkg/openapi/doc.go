// Package openapi imports form schemas from OpenAPI 3 documents. The request
// body of an operation becomes a FormSchema: object properties map to fields,
// formats and enums pick the field type, and constraints become validation
// rules. kin-openapi types stay behind this package.
package openapi
