package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// Receipt describes an accepted submission.
type Receipt struct {
	ID         string    `json:"id"`
	SchemaID   string    `json:"schemaId"`
	Payload    Payload   `json:"payload"`
	Hidden     []string  `json:"hidden,omitempty"`
	Disabled   []string  `json:"disabled,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Option configures a Collector.
type Option func(*Collector)

// WithSink routes condition and rule diagnostics to sink.
func WithSink(sink diag.Sink) Option {
	return func(c *Collector) {
		c.sink = diag.OrNop(sink)
	}
}

// WithRuleOptions forwards options to per-field validation.
func WithRuleOptions(opts ...validation.Option) Option {
	return func(c *Collector) {
		c.rules = append(c.rules, opts...)
	}
}

// WithClock overrides the time source used for receipts.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides receipt id generation.
func WithIDGenerator(fn func() string) Option {
	return func(c *Collector) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// SubmitOption configures a single Submit call.
type SubmitOption func(*submitConfig)

type submitConfig struct {
	evaluator visibility.Evaluator
	extras    map[string]any
}

// WithEvaluator reuses an evaluator built for the schema.
func WithEvaluator(evaluator visibility.Evaluator) SubmitOption {
	return func(c *submitConfig) {
		c.evaluator = evaluator
	}
}

// WithExtras exposes request data to expression conditions.
func WithExtras(extras map[string]any) SubmitOption {
	return func(c *submitConfig) {
		c.extras = extras
	}
}

// Collector validates submissions and forwards accepted ones to a Store.
type Collector struct {
	store Store
	sink  diag.Sink
	rules []validation.Option
	now   func() time.Time
	newID func() string
}

// New builds a Collector that saves to store.
func New(store Store, opts ...Option) (*Collector, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &Collector{
		store: store,
		sink:  diag.Nop,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Submit validates values against schema. Fields hidden by their conditions
// are exempt from validation and dropped from the payload. When any visible
// field fails, Submit returns a *RejectedError and nothing is stored.
func (c *Collector) Submit(ctx context.Context, schema model.FormSchema, values map[string]any, opts ...SubmitOption) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	cfg := &submitConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = visibility.NewEngine(schema, visibility.WithSink(c.sink))
	}

	result := validation.ValidateSubmission(schema, values,
		validation.WithEvaluator(cfg.evaluator),
		validation.WithExtras(cfg.extras),
		validation.WithSubmissionSink(c.sink),
		validation.WithRuleOptions(c.rules...),
	)
	if !result.Valid {
		return Receipt{}, &RejectedError{SchemaID: schema.ID, Result: result}
	}

	payload := BuildPayload(schema, values, result.Hidden)
	if err := c.store.Save(ctx, schema.ID, payload); err != nil {
		return Receipt{}, fmt.Errorf("submission: store: %w", err)
	}
	return Receipt{
		ID:         c.newID(),
		SchemaID:   schema.ID,
		Payload:    payload,
		Hidden:     result.Hidden,
		Disabled:   result.Disabled,
		ReceivedAt: c.now().UTC(),
	}, nil
}
