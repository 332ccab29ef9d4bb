package render

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentpipe/core"
	"github.com/hupe1980/agentpipe/logging"
	"github.com/hupe1980/agentpipe/model"
)

// DefaultNarrativeInstructions asks the model for a short report.
const DefaultNarrativeInstructions = `You summarize the output of a data pipeline for an end user.
You receive a JSON document with one entry per pipeline step.
Report the key findings in a few short paragraphs. Mention failed steps and their errors.
Do not invent data that is not in the document.`

// NarrativeOptions configures a NarrativeRenderer.
type NarrativeOptions struct {
	Instructions string
	Stream       bool
	// Fallback renders the result when the model fails. Nil surfaces the
	// model error instead.
	Fallback Renderer
	Logger   logging.Logger
}

// NarrativeRenderer asks a model to describe a result in prose. The model
// only sees the JSON rendering of the result; it never drives dispatch.
type NarrativeRenderer struct {
	llm  model.Model
	json *JSONRenderer
	opts NarrativeOptions
}

// NewNarrativeRenderer creates a NarrativeRenderer backed by llm.
func NewNarrativeRenderer(llm model.Model, optFns ...func(o *NarrativeOptions)) *NarrativeRenderer {
	opts := NarrativeOptions{
		Instructions: DefaultNarrativeInstructions,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &NarrativeRenderer{llm: llm, json: NewJSONRenderer(), opts: opts}
}

// Render implements Renderer.
func (r *NarrativeRenderer) Render(ctx context.Context, res *core.CompositeResult) (string, error) {
	doc, err := r.json.Render(ctx, res)
	if err != nil {
		return "", err
	}

	info := r.llm.Info()

	respCh, errCh := r.llm.Generate(ctx, model.Request{
		Instructions: r.opts.Instructions,
		Messages:     []model.Message{{Role: model.RoleUser, Text: doc}},
		Stream:       r.opts.Stream,
	})

	text, err := model.Collect(ctx, respCh, errCh)
	if err != nil {
		r.opts.Logger.Warn("render.narrative.failed", "provider", info.Provider, "model", info.Name, "error", err.Error())

		if r.opts.Fallback != nil && ctx.Err() == nil {
			return r.opts.Fallback.Render(ctx, res)
		}

		return "", fmt.Errorf("render: %s/%s: %w", info.Provider, info.Name, err)
	}

	r.opts.Logger.Debug("render.narrative.done", "provider", info.Provider, "model", info.Name, "chars", len(text))

	return text, nil
}
