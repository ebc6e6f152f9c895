package dataloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tailcallhq/tailcall-go/internal/dynval"
	"github.com/tailcallhq/tailcall-go/internal/eventbus"
	"github.com/tailcallhq/tailcall-go/internal/events"
)

// LoaderID identifies a data-loader instance within the blueprint, matching a
// DataLoaderId.
type LoaderID string

// BatchFn executes a single upstream call carrying every key accumulated in
// a batching window and returns the raw list of response elements (not
// necessarily aligned to keys — Loader partitions them by GroupBy).
type BatchFn func(ctx context.Context, keys []dynval.Value) ([]dynval.Value, error)

// Config describes one loader's batching policy, taken from the IO op's
// GroupBy/IsList/MaxBatchSize/BatchDelay fields.
type Config struct {
	GroupBy      dynval.Path
	IsList       bool
	MaxBatchSize int
	BatchDelay   time.Duration
	Batch        BatchFn
}

// Loader coalesces concurrent Load calls for the same key within a short window
// into one BatchFn invocation, then partitions the response by the GroupBy
// path.
type Loader struct {
	id  LoaderID
	cfg Config

	mu      sync.Mutex
	current *window
}

type window struct {
	loader    *Loader
	ctx       context.Context
	keysOrder []string
	keyValue  map[string]dynval.Value
	waiters   map[string][]chan result[dynval.Value]
	timer     *time.Timer
	flushed   bool
}

// NewLoader constructs a Loader from cfg. A MaxBatchSize <= 0 means
// unbounded (window closes only on the delay timer); BatchDelay <= 0
// flushes on the next scheduler tick (time.AfterFunc with 0 duration still
// lets same-goroutine callers that arrived synchronously join the window).
func NewLoader(cfg Config) *Loader {
	return &Loader{cfg: cfg}
}

// Load enrolls key in the current (or a new) batching window and blocks
// until the window's batch call completes and this key's slice of the
// response is partitioned out.
func (l *Loader) Load(ctx context.Context, key dynval.Value) (dynval.Value, error) {
	canon := key.ToString()
	ch := make(chan result[dynval.Value], 1)

	l.mu.Lock()
	w := l.current
	if w == nil {
		w = &window{
			loader:   l,
			ctx:      ctx,
			keyValue: make(map[string]dynval.Value),
			waiters:  make(map[string][]chan result[dynval.Value]),
		}
		l.current = w
		delay := l.cfg.BatchDelay
		w.timer = time.AfterFunc(delay, func() { l.flush(w) })
	}
	if _, seen := w.keyValue[canon]; !seen {
		w.keyValue[canon] = key
		w.keysOrder = append(w.keysOrder, canon)
	}
	w.waiters[canon] = append(w.waiters[canon], ch)
	full := l.cfg.MaxBatchSize > 0 && len(w.keysOrder) >= l.cfg.MaxBatchSize
	l.mu.Unlock()

	if full {
		// max_batch_size reached: close the window immediately rather than waiting
		// out the remainder of the delay; a batch flushes at the deadline or
		// max_batch_size, whichever comes first.
		w.timer.Stop()
		l.flush(w)
	}

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		return dynval.Null, ctx.Err()
	}
}

// flush drains the pending window and issues exactly one upstream call. The
// swap-then-send discipline is the mu-guarded swap of l.current to nil before
// any key can arrive between drain and request construction.
func (l *Loader) flush(w *window) {
	l.mu.Lock()
	if w.flushed {
		l.mu.Unlock()
		return
	}
	w.flushed = true
	if l.current == w {
		l.current = nil
	}
	l.mu.Unlock()

	keys := make([]dynval.Value, len(w.keysOrder))
	for i, canon := range w.keysOrder {
		keys[i] = w.keyValue[canon]
	}

	// Detach from any single subscriber's cancellation: the producer must run to
	// completion while any subscriber remains, independent of which caller
	// happened to open the window.
	batchCtx := context.WithoutCancel(w.ctx)

	start := time.Now()
	elements, err := l.cfg.Batch(batchCtx, keys)
	eventbus.Publish(batchCtx, events.DataLoaderBatch{
		LoaderID: string(l.id),
		Size:     len(keys),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		l.deliverErr(w, err)
		return
	}

	grouped := make(map[string][]dynval.Value, len(w.keysOrder))
	for _, el := range elements {
		groupKey, ok := dynval.Select(el, l.cfg.GroupBy)
		if !ok {
			continue
		}
		canon := groupKey.ToString()
		grouped[canon] = append(grouped[canon], el)
	}

	for _, canon := range w.keysOrder {
		matches := grouped[canon]
		var val dynval.Value
		switch {
		case l.cfg.IsList:
			val = dynval.Array(matches...)
		case len(matches) > 0:
			val = matches[0]
		default:
			val = dynval.Null
		}
		for _, ch := range w.waiters[canon] {
			ch <- result[dynval.Value]{value: val}
		}
	}
}

func (l *Loader) deliverErr(w *window, err error) {
	for _, chs := range w.waiters {
		for _, ch := range chs {
			ch <- result[dynval.Value]{err: fmt.Errorf("dataloader: batch call failed: %w", err)}
		}
	}
}

// Registry owns the set of Loader instances addressed by LoaderID, created
// lazily and shared for the lifetime of the process: each DataLoaderId
// addresses one in-memory loader.
type Registry struct {
	mu      sync.Mutex
	loaders map[LoaderID]*Loader
	factory map[LoaderID]func() *Loader
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[LoaderID]*Loader),
		factory: make(map[LoaderID]func() *Loader),
	}
}

// Register installs the constructor for id, called at most once (on first
// Get) to build the backing Loader. Blueprint binding calls this once per
// DataLoaderID discovered in the IR.
func (r *Registry) Register(id LoaderID, cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory[id] = func() *Loader {
		l := NewLoader(cfg)
		l.id = id
		return l
	}
}

// Get returns the shared Loader for id, constructing it on first use.
func (r *Registry) Get(id LoaderID) (*Loader, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loaders[id]; ok {
		return l, true
	}
	f, ok := r.factory[id]
	if !ok {
		return nil, false
	}
	l := f()
	r.loaders[id] = l
	return l, true
}
