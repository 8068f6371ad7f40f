package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoFields is returned when the plan leaves nothing to collect.
	ErrNoFields = errors.New("tui: plan has no fields")
)
