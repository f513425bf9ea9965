// Package metrics defines the Prometheus metrics of the perfil shell API.
// It is the single source of truth for metric names, labels and help strings.
//
// Build one Collector at startup against the registry that /metrics serves.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "perfil"

// Result label values.
const (
	ResultSuccess    = "success"
	ResultFailure    = "failure"
	ResultValidation = "validation_error"
	ResultCancelled  = "cancelled"
	ResultRejected   = "rejected"
)

// Collector records the API's metrics. A nil *Collector records nothing.
type Collector struct {
	// authOperations counts sign-in, sign-up and sign-out attempts.
	// Labels:
	//   - operation: "sign_in", "sign_up", "sign_out"
	//   - result: one of the Result* constants
	authOperations *prometheus.CounterVec

	// profileUpdates counts profile update transactions by result.
	profileUpdates *prometheus.CounterVec

	// sessionTransitions counts screen-group changes by the view entered.
	sessionTransitions *prometheus.CounterVec

	// requestDuration measures handler latency.
	// Labels:
	//   - method, route (the registered path, not the raw URL), status
	requestDuration *prometheus.HistogramVec
}

// NewCollector registers all metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		authOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_operations_total",
				Help:      "Total number of authentication operations, by operation and result.",
			},
			[]string{"operation", "result"},
		),
		profileUpdates: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profile_updates_total",
				Help:      "Total number of profile update transactions, by result.",
			},
			[]string{"result"},
		),
		sessionTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_transitions_total",
				Help:      "Total number of screen-group transitions, by the view entered.",
			},
			[]string{"view"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of shell API requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (c *Collector) AuthOperation(operation, result string) {
	if c == nil {
		return
	}
	c.authOperations.WithLabelValues(operation, result).Inc()
}

func (c *Collector) ProfileUpdate(result string) {
	if c == nil {
		return
	}
	c.profileUpdates.WithLabelValues(result).Inc()
}

func (c *Collector) SessionTransition(view string) {
	if c == nil {
		return
	}
	c.sessionTransitions.WithLabelValues(view).Inc()
}

// Middleware observes the duration of every request. Errors are rendered
// here so the recorded status is the one the client sees.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			if c == nil {
				return next(ec)
			}

			start := time.Now()
			if err := next(ec); err != nil {
				ec.Error(err)
			}

			route := ec.Path()
			if route == "" {
				route = "unmatched"
			}
			c.requestDuration.
				WithLabelValues(ec.Request().Method, route, strconv.Itoa(ec.Response().Status)).
				Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// Handler serves the registry for Prometheus scraping.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
