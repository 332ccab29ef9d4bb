// Package agentpipe wires configuration, logging, rendering and the sample
// composites into ready-to-use sessions. Most applications interact with
// this package by:
//  1. Loading a config.Config (file plus environment) or using the defaults
//  2. Creating a session via NewPipelineSession, NewAggregatorSession or
//     NewAssistantSession
//  3. Calling RunQuery on the returned session.Manager
//
// The composites themselves are deterministic; a model is only consulted
// when narration is enabled, to describe results in prose.
package agentpipe

import (
	"fmt"
	"io"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentpipe/config"
	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/model"
	"github.com/hupe1980/agentpipe/model/anthropic"
	"github.com/hupe1980/agentpipe/model/openai"
	"github.com/hupe1980/agentpipe/render"
	"github.com/hupe1980/agentpipe/samples"
	"github.com/hupe1980/agentpipe/session"
	"github.com/hupe1980/agentpipe/tools/datafeed"
)

// Options configures the session constructors.
type Options struct {
	// Config defaults to config.Load("") (defaults plus environment).
	Config *config.Config

	// Logger overrides the logger built from Config.Log.
	Logger logging.Logger
	// LogOutput receives the configured logger's output. Defaults to stderr.
	LogOutput io.Writer

	// Model overrides the provider model used for narration.
	Model model.Model

	// Feed serves the aggregator tools. Defaults to datafeed.New().
	Feed *datafeed.Feed

	SessionID string
	// Store defaults to an in-memory store per session.
	Store core.SessionStore
	// Reports archives every rendered result when set.
	Reports core.ReportStore
}

// NewPipelineSession returns a session over the sequential data processing
// pipeline.
func NewPipelineSession(optFns ...func(o *Options)) (*session.Manager, error) {
	return newSession(func(cfg *config.Config, _ Options) (core.Composite, error) {
		return samples.NewDataPipeline(func(o *samples.PipelineOptions) {
			o.Model = cfg.Model
		})
	}, optFns)
}

// NewAggregatorSession returns a session over the parallel weather, news
// and stock aggregator.
func NewAggregatorSession(optFns ...func(o *Options)) (*session.Manager, error) {
	return newSession(func(cfg *config.Config, opts Options) (core.Composite, error) {
		return samples.NewDataAggregator(func(o *samples.AggregatorOptions) {
			o.Model = cfg.Model
			o.Feed = opts.Feed
			o.BranchTimeout = cfg.BranchTimeout
		})
	}, optFns)
}

// NewAssistantSession returns a session over the single-agent weather
// assistant.
func NewAssistantSession(optFns ...func(o *Options)) (*session.Manager, error) {
	return newSession(func(cfg *config.Config, opts Options) (core.Composite, error) {
		return samples.NewWeatherAssistant(func(o *samples.AssistantOptions) {
			o.Model = cfg.Model
			o.Feed = opts.Feed
		})
	}, optFns)
}

// NewSession returns a session over an arbitrary composite, configured like
// the sample sessions.
func NewSession(composite core.Composite, optFns ...func(o *Options)) (*session.Manager, error) {
	return newSession(func(*config.Config, Options) (core.Composite, error) {
		return composite, nil
	}, optFns)
}

type buildFunc func(cfg *config.Config, opts Options) (core.Composite, error)

func newSession(build buildFunc, optFns []func(o *Options)) (*session.Manager, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(""); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		out := opts.LogOutput
		if out == nil {
			out = os.Stderr
		}
		pl, err := cfg.NewLogger(out)
		if err != nil {
			return nil, err
		}
		logger = pl.WithComponent("session")
	}

	renderer, err := newRenderer(cfg, opts.Model, logger)
	if err != nil {
		return nil, err
	}

	composite, err := build(cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("build composite: %w", err)
	}

	return session.NewManager(composite, func(o *session.Options) {
		o.AppName = cfg.AppName
		o.UserID = cfg.UserID
		o.SessionID = opts.SessionID
		o.Store = opts.Store
		o.Reports = opts.Reports
		o.Renderer = renderer
		o.Logger = logger
	})
}

func newRenderer(cfg *config.Config, llm model.Model, logger logging.Logger) (render.Renderer, error) {
	if !cfg.Narrate {
		return render.NewJSONRenderer(), nil
	}

	if llm == nil {
		var err error
		if llm, err = NewModel(cfg); err != nil {
			return nil, err
		}
	}

	return render.NewNarrativeRenderer(llm, func(o *render.NarrativeOptions) {
		o.Fallback = render.NewJSONRenderer()
		o.Logger = logger
	}), nil
}

// NewModel creates the model client for the configured provider.
func NewModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.NewModel(func(o *anthropic.Options) {
			o.Model = anthropicsdk.Model(cfg.Model)
			o.APIKey = cfg.APIKey
		}), nil
	case config.ProviderOpenAI:
		return openai.NewModel(cfg.APIKey, func(o *openai.Options) {
			o.Model = cfg.Model
		}), nil
	default:
		return nil, core.NewConfigurationError("provider", fmt.Sprintf("%s has no model", cfg.Provider))
	}
}
