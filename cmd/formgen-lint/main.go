package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/diag"
	"github.com/goliatone/go-formbuilder/pkg/schema"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

type violation struct {
	file     string
	location string
	severity diag.Severity
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] paths...\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nLint form schema documents for configuration errors.\n\n"); err != nil {
			panic(err)
		}
		flag.PrintDefaults()
	}
	warnings := flag.Bool("warnings", true, "print warning-severity issues")
	verbose := flag.Bool("verbose", false, "log each linted file")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}
	defer func() { _ = logger.Sync() }()

	var (
		violations []violation
		failed     bool
	)
	for _, path := range paths {
		linted, err := lintFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lint %s: %v\n", path, err)
			os.Exit(1)
		}
		logger.Debug("linted schema", zap.String("path", path), zap.Int("issues", len(linted)))
		for _, v := range linted {
			if v.severity == diag.SeverityError {
				failed = true
			} else if !*warnings {
				continue
			}
			violations = append(violations, v)
		}
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(os.Stderr, "%s: %s -> %s (%s)\n", v.file, v.location, v.message, v.severity)
	}
	if failed {
		os.Exit(1)
	}
}

func lintFile(path string) ([]violation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	form, err := schema.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}

	result := validation.ValidateSchema(form)
	out := make([]violation, 0, len(result.Issues))
	for _, issue := range result.Issues {
		location := issue.Field
		if location == "" {
			location = issue.Path
		}
		out = append(out, violation{
			file:     path,
			location: location,
			severity: issue.Severity,
			message:  issue.Message,
		})
	}
	return out, nil
}
