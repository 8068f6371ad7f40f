package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom schema loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithImporter injects the OpenAPI importer used for requests naming an
// operation.
func WithImporter(importer *openapi.Importer) Option {
	return func(o *Orchestrator) {
		o.importer = importer
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithHTMLOptions configures the html renderer of the default registry.
func WithHTMLOptions(opts ...html.Option) Option {
	return func(o *Orchestrator) {
		o.htmlOptions = append(o.htmlOptions, opts...)
	}
}

// WithTUIOptions configures the tui renderer of the default registry.
func WithTUIOptions(opts ...tui.Option) Option {
	return func(o *Orchestrator) {
		o.tuiOptions = append(o.tuiOptions, opts...)
	}
}

// WithSchemaTransformer registers a Transformer that can mutate schemas after
// loading but before validation.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithSink receives schema diagnostics produced while generating.
func WithSink(sink diag.Sink) Option {
	return func(o *Orchestrator) {
		o.sink = diag.OrNop(sink)
	}
}

// WithStrict refuses to render schemas with error-severity issues. By default
// such schemas render in their degraded form and the issues only reach the
// sink.
func WithStrict(strict bool) Option {
	return func(o *Orchestrator) {
		o.strict = strict
	}
}

// Orchestrator coordinates the pipeline from schema document to rendered
// output. It applies sensible defaults (html renderer, embedded templates)
// while remaining open to dependency injection for advanced callers.
type Orchestrator struct {
	loader            schema.Loader
	importer          *openapi.Importer
	registry          *render.Registry
	defaultRenderer   string
	htmlOptions       []html.Option
	tuiOptions        []tui.Option
	transformer       Transformer
	endpointOverrides map[string]EndpointOverride
	sink              diag.Sink
	strict            bool
	initialiseErr     error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers can
// start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		sink:            diag.Nop,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form.
type Request struct {
	// Schema is used as is when set.
	Schema *model.FormSchema

	// Document bypasses the loader when the caller already holds the payload.
	Document *schema.Document

	// Source identifies where the document lives when neither Schema nor
	// Document is supplied.
	Source schema.Source

	// OperationID marks the document as OpenAPI and selects the operation
	// whose request body becomes the form.
	OperationID string

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request values, errors and method overrides.
	RenderOptions render.RenderOptions
}

// SchemaError is returned in strict mode when the schema has errors.
type SchemaError struct {
	Result validation.SchemaValidationResult
}

func (e *SchemaError) Error() string {
	issues := e.Result.Errors()
	if len(issues) == 0 {
		return "orchestrator: schema is invalid"
	}
	return fmt.Sprintf("orchestrator: schema is invalid: %s: %s (and %d more)", issues[0].Field, issues[0].Message, len(issues)-1)
}

// Generate resolves the schema, reports its issues, plans the form for the
// request values and renders it.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	plan, err := o.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, plan, o.renderOptions(plan.SchemaID, req.RenderOptions))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Plan runs the pipeline up to, but excluding, rendering.
func (o *Orchestrator) Plan(ctx context.Context, req Request) (render.Plan, error) {
	if ctx == nil {
		return render.Plan{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return render.Plan{}, err
	}
	if err := o.initialiseErr; err != nil {
		return render.Plan{}, err
	}

	form, err := o.Resolve(ctx, req)
	if err != nil {
		return render.Plan{}, err
	}

	result := validation.ValidateSchema(form, validation.WithSink(o.sink))
	if o.strict && !result.Valid {
		return render.Plan{}, &SchemaError{Result: result}
	}

	// Issues already reached the sink through ValidateSchema.
	engine := visibility.NewEngine(form)
	options := o.renderOptions(form.ID, req.RenderOptions)
	return render.BuildPlan(form, engine, options, diag.Nop), nil
}

// Resolve returns the request's schema after the transformer ran.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (model.FormSchema, error) {
	form, err := o.resolveSchema(ctx, req)
	if err != nil {
		return model.FormSchema{}, err
	}
	if err := o.applyTransformer(ctx, &form); err != nil {
		return model.FormSchema{}, err
	}
	return form, nil
}

func (o *Orchestrator) resolveSchema(ctx context.Context, req Request) (model.FormSchema, error) {
	if req.Schema != nil {
		return req.Schema.Clone(), nil
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return model.FormSchema{}, err
	}

	if req.OperationID != "" {
		form, err := o.importer.Import(ctx, doc.Raw(), req.OperationID)
		if err != nil {
			return model.FormSchema{}, fmt.Errorf("orchestrator: import operation: %w", err)
		}
		return form, nil
	}

	form, err := doc.Schema()
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("orchestrator: decode schema: %w", err)
	}
	return form, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (schema.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return schema.Document{}, errors.New("orchestrator: schema, document or source is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return schema.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormSchema) error {
	if o.transformer == nil || form == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform schema: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = schema.NewLoader()
	}
	if o.importer == nil {
		o.importer = openapi.NewImporter(openapi.WithSink(o.sink))
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New(o.htmlOptions...)
		if err != nil {
			o.initialiseErr = appendInitialiseError(o.initialiseErr, fmt.Errorf("orchestrator: default renderer: %w", err))
		} else {
			o.registry.MustRegister(renderer)
		}
		collector, err := tui.New(o.tuiOptions...)
		if err != nil {
			o.initialiseErr = appendInitialiseError(o.initialiseErr, fmt.Errorf("orchestrator: tui renderer: %w", err))
		} else {
			o.registry.MustRegister(collector)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
