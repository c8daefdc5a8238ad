package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors.
type PrometheusHooks struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	meshSize      *prometheus.GaugeVec
	cacheTotal    *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	requestTotal  *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	inflight      prometheus.Gauge
}

// NewPrometheusHooks creates the collectors and registers them on reg.
// It panics if any collector is already registered, like MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linearmesh_pipeline_stage_total",
				Help: "Pipeline stage executions by outcome",
			},
			[]string{"stage", "result"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linearmesh_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		meshSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "linearmesh_last_layout_size",
				Help: "Layers and nodes of the most recent layout",
			},
			[]string{"kind"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linearmesh_cache_requests_total",
				Help: "Cache lookups and writes by key type",
			},
			[]string{"key_type", "result"},
		),
		cacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linearmesh_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linearmesh_http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linearmesh_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "linearmesh_http_inflight_requests",
				Help: "Requests currently being served",
			},
		),
	}

	reg.MustRegister(
		h.stageTotal, h.stageDuration, h.meshSize,
		h.cacheTotal, h.cacheBytes,
		h.requestTotal, h.requestTime, h.inflight,
	)
	return h
}

func (h *PrometheusHooks) observeStage(stage string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.stageTotal.WithLabelValues(stage, result).Inc()
	h.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnLoadStart(context.Context, string) {}

func (h *PrometheusHooks) OnLoadComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	h.observeStage("load", d, err)
}

func (h *PrometheusHooks) OnLayoutStart(context.Context, int) {}

func (h *PrometheusHooks) OnLayoutComplete(_ context.Context, layers, nodes int, d time.Duration, err error) {
	h.observeStage("layout", d, err)
	if err == nil {
		h.meshSize.WithLabelValues("layers").Set(float64(layers))
		h.meshSize.WithLabelValues("nodes").Set(float64(nodes))
	}
}

func (h *PrometheusHooks) OnRenderStart(context.Context, []string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.observeStage("render", d, err)
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheTotal.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.inflight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.inflight.Dec()
	h.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestTime.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ APIHooks      = (*PrometheusHooks)(nil)
)
