package request

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/isotopp/falimage/internal/fal"
	"github.com/isotopp/falimage/internal/log"
	"github.com/isotopp/falimage/internal/registry"
	"github.com/samber/do"
)

// Dispatcher turns a model key and a built argument set into a call against
// the hosted API, or a no-op in dry-run mode. The request trace is always
// printed first; failures from the hosted API propagate to the caller.
type Dispatcher struct {
	Invoker fal.Invoker
	Out     io.Writer
}

func NewDispatcher(i *do.Injector) (*Dispatcher, error) {
	return &Dispatcher{
		Invoker: do.MustInvoke[fal.Invoker](i),
		Out:     os.Stdout,
	}, nil
}

func (d *Dispatcher) Send(ctx context.Context, key string, model registry.Model, arguments map[string]any, dryRun bool) (map[string]any, error) {
	trace, err := json.MarshalIndent(map[string]any{
		"model":     key,
		"endpoint":  model.Endpoint,
		"arguments": arguments,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(d.out(), "*** REQUEST:")
	fmt.Fprintln(d.out(), string(trace))

	if dryRun {
		fmt.Fprintln(d.out(), "*** NOT SENT (dry-run)")
		return map[string]any{"images": []any{}}, nil
	}

	log.FromContextOrDiscard(ctx).WithGroup("dispatch").
		With("model", key, "endpoint", model.Endpoint, "call", model.Call).
		Info("sending generation request")

	if model.Call == registry.CallRun {
		return d.Invoker.Run(ctx, model.Endpoint, arguments)
	}
	return d.Invoker.Subscribe(ctx, model.Endpoint, arguments)
}

func (d *Dispatcher) out() io.Writer {
	if d.Out != nil {
		return d.Out
	}
	return os.Stdout
}
