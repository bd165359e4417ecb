package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pliu/warbler/internal/middleware"
)

var (
	SignupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_signups_total",
		Help: "Total number of accounts created",
	})
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})
	MessagesPostedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warbler_messages_posted_total",
		Help: "Total number of messages posted",
	})
	FollowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warbler_follows_total",
		Help: "Follow graph changes by action",
	}, []string{"action"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(SignupsTotal, LoginsTotal, MessagesPostedTotal, FollowsTotal, HttpRequestDuration)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHandler records request durations labelled with the matched
// mux route template, so ids in paths do not explode the label set.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := middleware.NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		HttpRequestDuration.With(prometheus.Labels{
			"method": r.Method,
			"route":  route,
			"status": strconv.Itoa(sw.Status()),
		}).Observe(time.Since(start).Seconds())
	})
}
