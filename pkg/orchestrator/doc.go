// Package orchestrator wires the load → validate → plan → render pipeline
// behind a single entry point. Schemas come inline, from a schema document or
// from an OpenAPI operation.
package orchestrator
