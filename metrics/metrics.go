// Package metrics provides Prometheus observability metrics for the duty report.
// It covers portal fetches, schedule parsing and coverage grouping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// =============================================================================
// PORTAL METRICS
// =============================================================================

// FetchRequestsTotal counts portal requests by operation and outcome.
var FetchRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "portal",
	Name:      "requests_total",
	Help:      "Portal requests by operation and outcome",
}, []string{"op", "outcome"})

// FetchDurationSeconds tracks portal request latency.
var FetchDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "portal",
	Name:      "request_duration_seconds",
	Help:      "Time taken by a portal request",
	Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}, []string{"op"})

// PeopleDiscovered tracks how many schedules a run fetches, by profile kind.
var PeopleDiscovered = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "portal",
	Name:      "people_discovered",
	Help:      "Person IDs discovered in the profile listings",
}, []string{"kind"})

// =============================================================================
// PARSER METRICS
// =============================================================================

// ParserErrorsTotal tracks parse errors by error type.
var ParserErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "errors_total",
	Help:      "Total parse errors by error type",
}, []string{"error_type"})

// ParserEventsTotal tracks events successfully decoded from schedule pages.
var ParserEventsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "parser",
	Name:      "events_total",
	Help:      "Total schedule events decoded",
})

// ParserDurationSeconds tracks time to parse one schedule page.
var ParserDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "parser",
	Name:      "duration_seconds",
	Help:      "Time taken to extract and decode one schedule page",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// =============================================================================
// COVERAGE METRICS
// =============================================================================

// SupervisionEvents is the number of break-duty events in the last report.
var SupervisionEvents = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "supervision_events",
	Help:      "Break-duty events that went into the last report",
})

// BreakSlots is the number of break slots in the last report.
var BreakSlots = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "break_slots",
	Help:      "Break slots found across the week",
})

// MissingPlaces counts unstaffed locations per weekday in the last report.
var MissingPlaces = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "coverage",
	Name:      "missing_places",
	Help:      "Unstaffed supervision locations summed over the day's break slots",
}, []string{"weekday"})

// GroupingDurationSeconds tracks time to build the coverage report.
var GroupingDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "coverage",
	Name:      "duration_seconds",
	Help:      "Time taken to group events into the coverage report",
	Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
})

// ResetCoverageGauges resets report gauges before a new grouping run.
func ResetCoverageGauges() {
	SupervisionEvents.Set(0)
	BreakSlots.Set(0)
	MissingPlaces.Reset()
}
