package monitor

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "plume"

var (
	// HTTPRequests 接口请求数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route"},
	)

	// DashboardComputations 按范围与口径统计的计算次数，result 为 ok 或错误类别
	DashboardComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_computations_total",
			Help:      "Dashboard computations by scope, mode and result",
		},
		[]string{"scope", "mode", "result"},
	)
	DashboardLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_compute_seconds",
			Help:      "Dashboard computation latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"scope"},
	)
	DashboardCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_total",
			Help:      "Dashboard cache lookups by result",
		},
		[]string{"result"},
	)

	// 数据质量
	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicate_posts_dropped_total",
		Help:      "Duplicate post observations dropped by dedup",
	})
	ClampedDeltas = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accrual_clamped_deltas_total",
		Help:      "Accrual days clamped to zero because snapshots decreased",
	})
	OutOfOrderSnapshots = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_out_of_order_total",
		Help:      "Snapshots received out of captured_at order",
	})
	AccrualFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accrual_fallbacks_total",
		Help:      "Single-user snapshot recomputes triggered by post activity",
	})
	IdentityMirrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_mirror_total",
			Help:      "YouTube channel ids mirrored back into mapping tables",
		},
		[]string{"table", "result"},
	)

	IngestMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_messages_total",
			Help:      "Canal messages consumed by outcome",
		},
		[]string{"outcome"},
	)
	CacheVersionBumps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_version_bumps_total",
		Help:      "Dashboard cache version bumps",
	})
)

// Handler /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware 记录请求数与耗时，route 使用路由模板避免高基数
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
