package agent

import (
	"fmt"

	"github.com/hupe1980/agentpipe/core"
)

// Binder derives the tool arguments of a stage from the run context: the
// raw user input and the results committed by earlier stages.
type Binder interface {
	Bind(rc *core.RunContext) (map[string]any, error)
}

// BindFunc is a functional adapter to allow ordinary functions to be used as Binders.
type BindFunc func(rc *core.RunContext) (map[string]any, error)

// Bind implements Binder.
func (f BindFunc) Bind(rc *core.RunContext) (map[string]any, error) { return f(rc) }

// FromInput passes the user input as argument arg.
func FromInput(arg string) Binder {
	return BindFunc(func(rc *core.RunContext) (map[string]any, error) {
		return map[string]any{arg: rc.Input}, nil
	})
}

// FromResult passes the result stored under key as argument arg. The bound
// result must exist and be successful.
func FromResult(key, arg string) Binder {
	return BindFunc(func(rc *core.RunContext) (map[string]any, error) {
		r, ok := rc.Result(key)
		if !ok {
			return nil, fmt.Errorf("no result stored under %q", key)
		}
		if !r.IsSuccess() {
			return nil, fmt.Errorf("result %q is an error: %s", key, r.Error)
		}
		return map[string]any{arg: r}, nil
	})
}

// Static always passes a copy of args.
func Static(args map[string]any) Binder {
	return BindFunc(func(*core.RunContext) (map[string]any, error) {
		out := make(map[string]any, len(args))
		for k, v := range args {
			out[k] = v
		}
		return out, nil
	})
}
