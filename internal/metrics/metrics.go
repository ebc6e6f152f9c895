// Package metrics wires the same eventbus events internal/otel consumes for
// tracing into Prometheus counters and histograms, registered against a
// caller-supplied registry and exposed via promhttp.Handler.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/tailcallhq/tailcall-go/internal/eventbus"
	events "github.com/tailcallhq/tailcall-go/internal/events"
)

// Recorder owns the Prometheus collectors and the eventbus subscriptions
// that feed them.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	graphqlRequests *prometheus.CounterVec
	graphqlErrors   prometheus.Counter
	ioCalls         *prometheus.CounterVec
	ioDuration      *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	dedupeJoins     prometheus.Counter
	loaderBatchSize *prometheus.HistogramVec
	fieldResolves   *prometheus.CounterVec
	fieldDuration   *prometheus.HistogramVec
	asyncBatchSize  prometheus.Histogram
}

// NewRecorder builds a Recorder with its own registry and subscribes it to
// the eventbus.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailcall_http_requests_total",
			Help: "HTTP requests served, by status code.",
		}, []string{"status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailcall_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		graphqlRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailcall_graphql_operations_total",
			Help: "GraphQL operations executed, by operation type.",
		}, []string{"operation_type"}),
		graphqlErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailcall_graphql_errors_total",
			Help: "GraphQL field errors returned to clients.",
		}),
		ioCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailcall_io_calls_total",
			Help: "Upstream IO calls issued by the evaluator, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ioDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailcall_io_call_duration_seconds",
			Help:    "Upstream IO call latency, by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailcall_cache_hits_total",
			Help: "Cache node lookups served without invoking IO.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailcall_cache_misses_total",
			Help: "Cache node lookups that invoked IO.",
		}),
		dedupeJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tailcall_dedupe_joins_total",
			Help: "Request-scoped dedupe calls that joined an in-flight call.",
		}),
		loaderBatchSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailcall_dataloader_batch_size",
			Help:    "Number of keys flushed per data-loader batch.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}, []string{"loader_id"}),
		fieldResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailcall_field_resolutions_total",
			Help: "Field resolver invocations, by object type, field, and outcome.",
		}, []string{"object_type", "field", "outcome"}),
		fieldDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailcall_field_resolution_duration_seconds",
			Help:    "Field resolver latency for synchronously-resolved fields.",
			Buckets: prometheus.DefBuckets,
		}, []string{"object_type", "field"}),
		asyncBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tailcall_async_batch_size",
			Help:    "Number of fields flushed per depth-wise async resolution batch.",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
		}),
	}
	reg.MustRegister(
		r.httpRequests, r.httpDuration, r.graphqlRequests, r.graphqlErrors,
		r.ioCalls, r.ioDuration, r.cacheHits, r.cacheMisses, r.dedupeJoins,
		r.loaderBatchSize, r.fieldResolves, r.fieldDuration, r.asyncBatchSize,
	)
	r.register()
	return r
}

// Handler returns the promhttp handler serving this Recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) register() {
	eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
		status := statusBucket(e.Status)
		r.httpRequests.WithLabelValues(status).Inc()
		r.httpDuration.WithLabelValues(status).Observe(e.Duration.Seconds())
	})

	eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) {
		r.graphqlRequests.WithLabelValues(e.OperationType).Inc()
		r.graphqlErrors.Add(float64(len(e.Errors)))
	})

	eventbus.Subscribe(func(_ context.Context, e events.IOFinish) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		r.ioCalls.WithLabelValues(e.Kind, outcome).Inc()
		r.ioDuration.WithLabelValues(e.Kind).Observe(e.Duration.Seconds())
	})

	eventbus.Subscribe(func(_ context.Context, _ events.CacheHit) { r.cacheHits.Inc() })
	eventbus.Subscribe(func(_ context.Context, _ events.CacheMiss) { r.cacheMisses.Inc() })
	eventbus.Subscribe(func(_ context.Context, _ events.DedupeJoin) { r.dedupeJoins.Inc() })

	eventbus.Subscribe(func(_ context.Context, e events.DataLoaderBatch) {
		r.loaderBatchSize.WithLabelValues(e.LoaderID).Observe(float64(e.Size))
	})

	eventbus.Subscribe(func(_ context.Context, e events.FieldResolve) {
		outcome := "ok"
		if e.Err != nil {
			outcome = "error"
		}
		r.fieldResolves.WithLabelValues(e.ObjectType, e.Field, outcome).Inc()
		if !e.Async {
			r.fieldDuration.WithLabelValues(e.ObjectType, e.Field).Observe(e.Duration.Seconds())
		}
	})

	eventbus.Subscribe(func(_ context.Context, e events.AsyncBatchFlush) {
		r.asyncBatchSize.Observe(float64(e.Size))
	})
}

func statusBucket(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
