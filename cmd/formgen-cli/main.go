package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/orchestrator"
	"github.com/goliatone/go-formbuilder/pkg/render"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

func main() {
	source := flag.String("schema", "", "form schema or OpenAPI document path or URL")
	opID := flag.String("operation", "", "OpenAPI operation ID to import (schema is a form schema if empty)")
	renderer := flag.String("renderer", "html", "renderer to use (html or tui)")
	valuesPath := flag.String("values", "", "JSON file with prefilled values")
	presetPath := flag.String("preset", "", "JSON preset applied to the schema before rendering")
	mode := flag.String("mode", "public", "render mode (public or preview)")
	format := flag.String("format", "json", "tui output format (json, form or pretty)")
	strict := flag.Bool("strict", false, "refuse to render schemas with errors")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("verbose", false, "log diagnostics at debug level")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	src, err := schema.ParseSource(strings.TrimSpace(*source))
	if err != nil {
		log.Fatalf("invalid schema source %q: %v", *source, err)
	}

	values, err := readValues(*valuesPath)
	if err != nil {
		log.Fatalf("Failed to read values: %v", err)
	}

	options := []orchestrator.Option{
		orchestrator.WithSink(diag.NewZapSink(logger)),
		orchestrator.WithStrict(*strict),
		orchestrator.WithTUIOptions(
			tui.WithOutputFormat(tui.ParseOutputFormat(*format)),
			tui.WithSink(diag.NewZapSink(logger)),
		),
	}
	if *presetPath != "" {
		raw, err := os.ReadFile(*presetPath)
		if err != nil {
			log.Fatalf("Failed to read preset: %v", err)
		}
		preset, err := orchestrator.NewJSONPresetTransformer(raw)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		options = append(options, orchestrator.WithSchemaTransformer(preset))
	}

	gen := orchestrator.New(options...)
	out, err := gen.Generate(context.Background(), orchestrator.Request{
		Source:      src,
		OperationID: *opID,
		Renderer:    *renderer,
		RenderOptions: render.RenderOptions{
			Mode:   render.ParseMode(*mode),
			Values: values,
		},
	})
	if err != nil {
		log.Fatalf("Failed to generate form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		logger.Info("form written", zap.String("path", *output), zap.String("renderer", *renderer))
		return
	}
	fmt.Println(string(out))
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func readValues(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return values, nil
}
