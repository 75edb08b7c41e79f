package monitor

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "review_logins_total", Help: "Login attempts by method and result"},
		[]string{"method", "result"},
	)
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "review_submissions_total", Help: "Application submissions by result"},
		[]string{"result"},
	)
	RatingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "review_ratings_total", Help: "Stored application ratings"},
	)
	RankingUpdatesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "review_ranking_updates_total", Help: "Replaced patron rankings"},
	)
	ExportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "review_exports_total", Help: "Generated ranking exports"},
	)
)

var registerOnce sync.Once

// Register adds the counters to the default registry. Safe to call more than
// once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(LoginsTotal, SubmissionsTotal, RatingsTotal, RankingUpdatesTotal, ExportsTotal)
	})
}

// RegisterMetricsRoute exposes the default registry at /metrics.
func RegisterMetricsRoute(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
