// Package runtime declares the seam IO nodes dispatch through: a small,
// uniform Client interface implemented by internal/httprt, internal/grpcrt,
// internal/graphqlrt and internal/jsrt, so internal/eval never needs to
// know which upstream kind it is calling.
package runtime

import (
	"context"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// Client performs one already-rendered upstream request and returns its
// result as a dynval.Value, or a StatusError/transport error on failure.
type Client interface {
	Do(ctx context.Context, rendered template.Rendered) (dynval.Value, error)
}

// StatusError is returned by a Client when the upstream responded but with a
// non-success status, distinct from a pure transport failure.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return "runtime: upstream responded with non-success status"
	}
	return e.Message
}
