// Package jsrt dispatches @js IO calls issued by the IR evaluator by
// invoking a named function exported from a shared script, running in an
// embedded ECMAScript runtime rather than a subprocess or external service.
package jsrt

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/runtime"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Client implements internal/runtime.Client for OpJS IO nodes. A single
// goja.Runtime is not safe for concurrent use, so calls are serialized
// behind a mutex; scripts are expected to be short, synchronous
// transformations rather than blocking I/O.
type Client struct {
	mu  sync.Mutex
	vm  *goja.Runtime
}

var _ runtime.Client = (*Client)(nil)

// NewClient compiles script (a sequence of top-level function declarations)
// into a fresh runtime shared by every call.
func NewClient(script string) (*Client, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("jsrt: compile script: %w", err)
	}
	return &Client{vm: vm}, nil
}

func (c *Client) Do(ctx context.Context, rendered template.Rendered) (dynval.Value, error) {
	if err := ctx.Err(); err != nil {
		return dynval.Null, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fnValue := c.vm.Get(rendered.JSFunction)
	fn, ok := goja.AssertFunction(fnValue)
	if !ok {
		return dynval.Null, fmt.Errorf("jsrt: %q is not a function", rendered.JSFunction)
	}

	arg := c.vm.ToValue(rendered.JSArg.ToAny())
	result, err := fn(goja.Undefined(), arg)
	if err != nil {
		return dynval.Null, fmt.Errorf("jsrt: %s: %w", rendered.JSFunction, err)
	}
	return dynval.FromAny(result.Export()), nil
}
