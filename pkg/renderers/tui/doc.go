// Package tui collects form values interactively in a terminal.
//
// The renderer walks a plan in layout reading order and prompts through a
// PromptDriver (survey by default). Conditions are re-evaluated after every
// answer, so fields revealed by later answers are still asked. The collected
// values are validated once more and serialized as JSON, form-encoded or
// pretty key=value output.
package tui
