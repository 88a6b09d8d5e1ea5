// DPIScope - UniFi Controller API Client with DPI Name Resolution
// Copyright 2026 DPIScope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dpiscope/dpiscope

// Package metrics provides Prometheus instrumentation for DPIScope.
//
// Metrics are registered on the default registry via promauto; exposing them
// (promhttp, push, ...) is the host application's concern. Available metrics:
//
//   - dpiscope_controller_requests_total{endpoint,method,status}
//   - dpiscope_controller_request_duration_seconds{endpoint}
//   - dpiscope_resolver_attempts_total{result}
//   - dpiscope_dpi_annotated_records_total
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ControllerRequests counts controller API calls by endpoint, HTTP
	// method and response status.
	ControllerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpiscope_controller_requests_total",
			Help: "Total UniFi controller API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	// ControllerRequestDuration observes controller API call latency.
	ControllerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dpiscope_controller_request_duration_seconds",
			Help:    "UniFi controller API request latency",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"endpoint"},
	)

	// ResolverAttempts counts DPI name-table resolution attempts by result
	// (hit, miss, error).
	ResolverAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dpiscope_resolver_attempts_total",
			Help: "DPI classification script resolution attempts",
		},
		[]string{"result"},
	)

	// AnnotatedRecords counts DPI stat records annotated with resolved names.
	AnnotatedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dpiscope_dpi_annotated_records_total",
			Help: "DPI stat records annotated with resolved names",
		},
	)
)

// ObserveControllerRequest records one controller API call.
func ObserveControllerRequest(endpoint, method string, status int, duration time.Duration) {
	ControllerRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	ControllerRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// Resolver attempt results.
const (
	ResolverHit   = "hit"
	ResolverMiss  = "miss"
	ResolverError = "error"
)
