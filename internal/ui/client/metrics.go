package client

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by the Metrics middleware
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the api client collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tradebot",
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Calls made to the trading bot API by endpoint, method and outcome.",
		}, []string{"endpoint", "method", "outcome", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tradebot",
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of calls to the trading bot API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records the outcome and latency of each call
func (m *Metrics) Middleware() Middleware {
	return Middleware{
		Name: "metrics",
		OnResult: func(req Request, res Result) Result {
			outcome := "success"
			var ce *ClientError
			if res.Err != nil {
				outcome = KindLocal.String()
				if errors.As(res.Err, &ce) {
					outcome = ce.Kind.String()
				}
			}

			m.requests.WithLabelValues(string(req.Endpoint), req.Method, outcome, strconv.Itoa(res.StatusCode)).Inc()
			m.duration.WithLabelValues(string(req.Endpoint), req.Method).Observe(res.Elapsed.Seconds())
			return res
		},
	}
}
