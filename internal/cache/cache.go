// Package cache implements a TTL-bounded, process-wide store keyed by
// template.IoID, used by the evaluator's Cache node to memoize upstream IO
// calls.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/template"
)

// ErrKeyNotFound names the absent-key case. The LRU and Redis backends do not
// return it: their Get reports an absent or expired key as ok=false with a nil
// error.
var ErrKeyNotFound = errors.New("cache: key not found")

// Cache stores rendered IO results keyed by their fingerprint. Get/Set never
// block on upstream IO themselves; the Cache ir node is responsible for calling
// through to the wrapped IO on a miss and storing the result with its max_age.
type Cache interface {
	Get(ctx context.Context, key template.IoID) (dynval.Value, bool, error)
	Set(ctx context.Context, key template.IoID, value dynval.Value, ttl time.Duration) error
}
