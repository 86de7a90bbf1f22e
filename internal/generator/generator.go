package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bakito/tf-provider-gen/internal/diag"
	"github.com/bakito/tf-provider-gen/internal/model"
	"github.com/bakito/tf-provider-gen/internal/openapi"
	"github.com/bakito/tf-provider-gen/internal/providerconfig"
	"github.com/bakito/tf-provider-gen/internal/render"
	"github.com/bakito/tf-provider-gen/internal/schema"
)

// Options configure a generator run.
type Options struct {
	SpecFile     string          `validate:"required,file"`
	Dialect      openapi.Dialect `validate:"required,oneof=1 2 3"`
	ConfigFile   string          `validate:"required,file"`
	TargetDir    string          `validate:"required"`
	ProviderName string          `validate:"required,lowercase,excludesall=/"`
	Author       string          `validate:"required_without=Module,excludesall=/"`
	// Module overrides the go module path of the generated provider.
	Module string
	// Workers limits the resources built in parallel. Zero uses one worker per CPU.
	Workers int `validate:"gte=0"`
}

// Result is the outcome of a successful run.
type Result struct {
	Resources []*model.Resource
	Written   []string
	Report    *diag.Report
}

var optionsValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// Run generates the provider. Decode, dialect and reference errors abort the run before
// anything is written. Problems of single resources or files are collected in the report.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := optionsValidator().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	spec, err := openapi.ParseFile(opts.SpecFile, opts.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse spec: %w", err)
	}

	arena, err := schema.Normalize(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize spec: %w", err)
	}

	cfg, err := providerconfig.ParseFile(opts.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse provider configuration: %w", err)
	}

	report := &diag.Report{}
	resources, err := model.NewBuilder(arena, cfg, opts.Workers).Build(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to build resources: %w", err)
	}

	artifacts, err := render.Artifacts(render.ProviderInfo{
		Name:    opts.ProviderName,
		Author:  opts.Author,
		Module:  opts.Module,
		BaseURL: cfg.Global.URI,
		Headers: cfg.Global.Headers,
	}, resources)
	if err != nil {
		return nil, fmt.Errorf("failed to render provider: %w", err)
	}

	written := render.WriteArtifacts(opts.TargetDir, artifacts, report)
	report.Log()

	slog.With(
		"title", arena.Title,
		"provider", opts.ProviderName,
		"resources", len(resources),
		"files", len(written),
		"warnings", len(report.Warnings()),
	).Info("Successfully generated provider")

	return &Result{Resources: resources, Written: written, Report: report}, nil
}
