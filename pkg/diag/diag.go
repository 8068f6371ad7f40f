// Package diag carries configuration diagnostics out of the evaluation path.
// Evaluators never fail on bad schema data; they degrade and report through a
// Sink so builders and linters can warn the author.
package diag

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Code identifies the kind of configuration problem.
type Code string

const (
	CodeUnresolvedReference Code = "unresolved_reference"
	CodeSelfReference       Code = "self_reference"
	CodeDependencyCycle     Code = "dependency_cycle"
	CodeUnknownOperator     Code = "unknown_operator"
	CodeInvalidExpression   Code = "invalid_expression"
	CodeInvalidPattern      Code = "invalid_pattern"
	CodeInvalidRuleValue    Code = "invalid_rule_value"
	CodeRowOverflow         Code = "row_overflow"
	CodeUnknownLayout       Code = "unknown_layout"
	CodeDuplicateFieldID    Code = "duplicate_field_id"
	CodeMissingFieldID      Code = "missing_field_id"
	CodeUnknownFieldType    Code = "unknown_field_type"
	CodeMissingOptions      Code = "missing_options"
	CodeDuplicateOption     Code = "duplicate_option"
	CodeUnexpectedOptions   Code = "unexpected_options"
	CodeInvalidWidth        Code = "invalid_width"
	CodeInvalidGridColumns  Code = "invalid_grid_columns"
	CodeUnknownRuleType     Code = "unknown_rule_type"
	CodeUnknownField        Code = "unknown_field"
	CodeUnsupportedProperty Code = "unsupported_property"
)

// Diagnostic describes one configuration problem.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	FieldID  string   `json:"fieldId,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	if d.FieldID == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.FieldID, d.Message)
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(Diagnostic)

// Report delegates to the underlying function.
func (fn SinkFunc) Report(d Diagnostic) {
	fn(d)
}

// Nop discards every diagnostic.
var Nop Sink = SinkFunc(func(Diagnostic) {})

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop
	}
	return s
}

// Warn reports a warning-level diagnostic.
func Warn(s Sink, code Code, fieldID, format string, args ...any) {
	OrNop(s).Report(Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		FieldID:  fieldID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Error reports an error-level diagnostic.
func Error(s Sink, code Code, fieldID, format string, args ...any) {
	OrNop(s).Report(Diagnostic{
		Severity: SeverityError,
		Code:     code,
		FieldID:  fieldID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Collector accumulates diagnostics in memory, dropping exact duplicates so
// repeated evaluation passes do not flood the builder.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
	seen  map[Diagnostic]struct{}
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{seen: make(map[Diagnostic]struct{})}
}

// Report records d unless an identical diagnostic was already recorded.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[Diagnostic]struct{})
	}
	if _, exists := c.seen[d]; exists {
		return
	}
	c.seen[d] = struct{}{}
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of the recorded diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Sorted returns the diagnostics ordered by field id, code and message.
func (c *Collector) Sorted() []Diagnostic {
	out := c.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FieldID != out[j].FieldID {
			return out[i].FieldID < out[j].FieldID
		}
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// Has reports whether a diagnostic with the given code was recorded.
func (c *Collector) Has(code Code) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Code == code {
			return true
		}
	}
	return false
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Tee fans a diagnostic out to every non-nil sink.
func Tee(sinks ...Sink) Sink {
	var active []Sink
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return SinkFunc(func(d Diagnostic) {
		for _, s := range active {
			s.Report(d)
		}
	})
}

// NewZapSink forwards diagnostics to a zap logger.
func NewZapSink(logger *zap.Logger) Sink {
	if logger == nil {
		return Nop
	}
	return SinkFunc(func(d Diagnostic) {
		fields := []zap.Field{
			zap.String("code", string(d.Code)),
		}
		if d.FieldID != "" {
			fields = append(fields, zap.String("field", d.FieldID))
		}
		if d.Severity == SeverityError {
			logger.Error(d.Message, fields...)
			return
		}
		logger.Warn(d.Message, fields...)
	})
}
