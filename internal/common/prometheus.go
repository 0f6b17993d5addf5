package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	CheckInTotal               = "check_in_total"
	RealtimeEventTotal         = "realtime_event_total"
	RealtimeSubscriptions      = "realtime_subscriptions"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		RealtimeSubscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: RealtimeSubscriptions,
			Help: "Number of open realtime subscriptions",
		}, []string{"entity_type"}),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		CheckInTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: CheckInTotal,
			Help: "Count of check-ins by result",
		}, []string{"result"}),
		RealtimeEventTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RealtimeEventTotal,
			Help: "Count of realtime change events received",
		}, []string{"entity_type", "op"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
