package render

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/hupe1980/agentpipe/core"
)

// Renderer converts a CompositeResult into user-facing text.
type Renderer interface {
	Render(ctx context.Context, res *core.CompositeResult) (string, error)
}

// RendererFunc is a functional adapter to allow ordinary functions to be used as Renderers.
type RendererFunc func(ctx context.Context, res *core.CompositeResult) (string, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, res *core.CompositeResult) (string, error) {
	return f(ctx, res)
}

// JSONRenderer renders the result as indented JSON with results in
// configured order.
type JSONRenderer struct {
	Indent string
}

// NewJSONRenderer returns a JSONRenderer indenting with two spaces.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{Indent: "  "}
}

// Render implements Renderer.
func (r *JSONRenderer) Render(_ context.Context, res *core.CompositeResult) (string, error) {
	if res == nil {
		return "", fmt.Errorf("render: nil result")
	}

	b, err := sonic.ConfigStd.MarshalIndent(res, "", r.Indent)
	if err != nil {
		return "", fmt.Errorf("render: marshal %s result: %w", res.Composite, err)
	}

	return string(b), nil
}
