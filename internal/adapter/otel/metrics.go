package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "bytespace"

// Metrics holds all Bytespace metric instruments.
type Metrics struct {
	Mutations         metric.Int64Counter
	PermissionDenials metric.Int64Counter
	Invalidations     metric.Int64Counter
	InvalidationFails metric.Int64Counter
	LLMGenerations    metric.Int64Counter
	LLMDuration       metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Mutations, err = meter.Int64Counter("bytespace.mutations",
		metric.WithDescription("Number of authorized mutations executed"))
	if err != nil {
		return nil, err
	}

	m.PermissionDenials, err = meter.Int64Counter("bytespace.permission.denials",
		metric.WithDescription("Number of mutations rejected by the permission gate"))
	if err != nil {
		return nil, err
	}

	m.Invalidations, err = meter.Int64Counter("bytespace.cache.invalidations",
		metric.WithDescription("Number of cache tags invalidated after writes"))
	if err != nil {
		return nil, err
	}

	m.InvalidationFails, err = meter.Int64Counter("bytespace.cache.invalidation_failures",
		metric.WithDescription("Number of cache invalidations that failed after a committed write"))
	if err != nil {
		return nil, err
	}

	m.LLMGenerations, err = meter.Int64Counter("bytespace.llm.generations",
		metric.WithDescription("Number of LLM content generations"))
	if err != nil {
		return nil, err
	}

	m.LLMDuration, err = meter.Float64Histogram("bytespace.llm.duration_seconds",
		metric.WithDescription("LLM generation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
