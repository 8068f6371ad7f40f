package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Violation is one failed rule.
type Violation struct {
	Rule    model.ValidationRuleType `json:"rule"`
	Message string                   `json:"message"`
}

// Option configures a validation call.
type Option func(*config)

type config struct {
	sink     diag.Sink
	messages map[model.ValidationRuleType]string
}

// WithSink routes configuration diagnostics (invalid patterns, non-numeric
// rule parameters) to sink.
func WithSink(sink diag.Sink) Option {
	return func(c *config) {
		c.sink = diag.OrNop(sink)
	}
}

// WithDefaultMessages overrides the messages used for rules that do not carry
// their own. Each template receives the rule parameter as its only argument.
func WithDefaultMessages(messages map[model.ValidationRuleType]string) Option {
	return func(c *config) {
		for kind, msg := range messages {
			c.messages[kind] = msg
		}
	}
}

var defaultMessages = map[model.ValidationRuleType]string{
	model.ValidationRuleRequired:  "This field is required",
	model.ValidationRuleMinLength: "Must be at least %v characters",
	model.ValidationRuleMaxLength: "Must be at most %v characters",
	model.ValidationRuleMin:       "Must be at least %v",
	model.ValidationRuleMax:       "Must be at most %v",
	model.ValidationRulePattern:   "Invalid format",
}

func newConfig(opts []Option) *config {
	cfg := &config{
		sink:     diag.Nop,
		messages: make(map[model.ValidationRuleType]string, len(defaultMessages)),
	}
	for kind, msg := range defaultMessages {
		cfg.messages[kind] = msg
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// Validate applies the field's rules to value and returns one message per
// failing rule, in rule order. An empty result means the value is valid.
func Validate(field model.FieldDefinition, value any, opts ...Option) []string {
	violations := Check(field, value, opts...)
	if len(violations) == 0 {
		return nil
	}
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = v.Message
	}
	return out
}

// ValidateWithSink is Validate with configuration diagnostics sent to sink.
func ValidateWithSink(field model.FieldDefinition, value any, sink diag.Sink) []string {
	return Validate(field, value, WithSink(sink))
}

// Check is Validate returning the failing rule alongside each message.
//
// Every rule entry is evaluated independently, so two rules of the same type
// both report. A field flagged Required without a required rule is checked
// first using the default required message.
func Check(field model.FieldDefinition, value any, opts ...Option) []Violation {
	cfg := newConfig(opts)
	var out []Violation

	if field.Required && !field.HasRule(model.ValidationRuleRequired) && missing(field, value) {
		out = append(out, Violation{
			Rule:    model.ValidationRuleRequired,
			Message: cfg.message(model.ValidationRule{Type: model.ValidationRuleRequired}),
		})
	}

	for _, rule := range field.Validation {
		if !cfg.passes(field, rule, value) {
			out = append(out, Violation{Rule: rule.Type, Message: cfg.message(rule)})
		}
	}
	return out
}

func (c *config) passes(field model.FieldDefinition, rule model.ValidationRule, value any) bool {
	switch rule.Type {
	case model.ValidationRuleRequired:
		return !missing(field, value)

	case model.ValidationRuleMinLength, model.ValidationRuleMaxLength:
		s, ok := value.(string)
		if !ok {
			return true
		}
		limit, ok := c.numericParam(field, rule)
		if !ok {
			return true
		}
		length := float64(utf8.RuneCountInString(s))
		if rule.Type == model.ValidationRuleMinLength {
			return length >= limit
		}
		return length <= limit

	case model.ValidationRuleMin, model.ValidationRuleMax:
		n, ok := numericValue(field, value)
		if !ok {
			return true
		}
		limit, ok := c.numericParam(field, rule)
		if !ok {
			return true
		}
		if rule.Type == model.ValidationRuleMin {
			return n >= limit
		}
		return n <= limit

	case model.ValidationRulePattern:
		// A broken pattern fails whatever the value so the author hears about it.
		source, _ := rule.Value.(string)
		re, err := CompilePattern(source)
		if err != nil {
			diag.Warn(c.sink, diag.CodeInvalidPattern, field.ID, "pattern %q does not compile: %v", source, err)
			return false
		}
		s, ok := value.(string)
		if !ok {
			return true
		}
		return re.MatchString(s)

	default:
		diag.Warn(c.sink, diag.CodeUnknownRuleType, field.ID, "unknown validation rule %q ignored", rule.Type)
		return true
	}
}

func (c *config) numericParam(field model.FieldDefinition, rule model.ValidationRule) (float64, bool) {
	limit, ok := ParamNumber(rule.Value)
	if !ok {
		diag.Warn(c.sink, diag.CodeInvalidRuleValue, field.ID, "%s rule needs a numeric value, got %v", rule.Type, rule.Value)
	}
	return limit, ok
}

func (c *config) message(rule model.ValidationRule) string {
	if msg := strings.TrimSpace(rule.Message); msg != "" {
		return msg
	}
	template := c.messages[rule.Type]
	if template == "" {
		return fmt.Sprintf("Failed %s validation", rule.Type)
	}
	if strings.Contains(template, "%") {
		return fmt.Sprintf(template, formatParam(rule.Value))
	}
	return template
}

func formatParam(value any) any {
	if n, ok := ParamNumber(value); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return value
}

// missing reports whether value counts as absent for a required check. A false
// boolean is absent only when the field demands affirmation via Required.
func missing(field model.FieldDefinition, value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v && field.Required
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// numericValue returns value as a number when it is numeric. Strings are
// accepted only for number fields, whose form posts arrive as text.
func numericValue(field model.FieldDefinition, value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		if field.Type != model.FieldTypeNumber {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// ParamNumber reads a rule parameter as a number. Parameters decoded from JSON
// are float64; hand-built schemas may use ints or numeric strings.
func ParamNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// maxCachedPatterns bounds the pattern cache. Sources are author-editable, so
// a long-running builder would otherwise grow it without limit.
const maxCachedPatterns = 512

var patterns = struct {
	mu    sync.RWMutex
	cache map[string]compiledPattern
}{cache: make(map[string]compiledPattern)}

type compiledPattern struct {
	re  *regexp.Regexp
	err error
}

// CompilePattern compiles a pattern rule source, caching both successes and
// failures so per-keystroke validation does not recompile. The cache is
// cleared once it reaches maxCachedPatterns entries.
func CompilePattern(source string) (*regexp.Regexp, error) {
	patterns.mu.RLock()
	entry, ok := patterns.cache[source]
	patterns.mu.RUnlock()
	if ok {
		return entry.re, entry.err
	}

	re, err := regexp.Compile(source)
	if err != nil {
		err = fmt.Errorf("validation: pattern %q: %w", source, err)
	}

	patterns.mu.Lock()
	if len(patterns.cache) >= maxCachedPatterns {
		patterns.cache = make(map[string]compiledPattern)
	}
	patterns.cache[source] = compiledPattern{re: re, err: err}
	patterns.mu.Unlock()
	return re, err
}

func cachedPatterns() int {
	patterns.mu.RLock()
	defer patterns.mu.RUnlock()
	return len(patterns.cache)
}
