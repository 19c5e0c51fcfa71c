// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	loginOutcome           *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	if m.responseTime == nil {
		return fmt.Errorf("metric not instantiated")
	}

	route, status := tags["route"], tags["status"]
	m.responseTime.With(prometheus.Labels{"route": route, "status": status}).Observe(value)

	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	if m.dependencyAvailability == nil {
		return fmt.Errorf("metric not instantiated")
	}

	m.dependencyAvailability.With(prometheus.Labels{"component": tags["component"]}).Set(value)

	return nil
}

func (m *Monitor) SetLoginOutcomeMetric(tags map[string]string) error {
	if m.loginOutcome == nil {
		return fmt.Errorf("metric not instantiated")
	}

	outcome, ok := tags["outcome"]
	if !ok {
		return fmt.Errorf("missing outcome label")
	}

	m.loginOutcome.With(prometheus.Labels{"outcome": outcome}).Inc()

	return nil
}

// register returns the collector that ends up exported: c itself, or the
// identical one a previous monitor of the same service already registered.
func register[C prometheus.Collector](r prometheus.Registerer, c C, logger logging.LoggerInterface) C {
	err := r.Register(c)
	if err == nil {
		return c
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing
		}
	}

	logger.Errorf("failed to register metric: %v", err)
	return c
}

// NewMonitor creates the service metrics and registers them with the default registry
func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	return newMonitor(prometheus.DefaultRegisterer, service, logger)
}

func newMonitor(r prometheus.Registerer, service string, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger

	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "http_response_time_seconds",
			Help:        "http_response_time_seconds",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"route", "status"},
	)

	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "dependency_available",
			Help:        "dependency_available",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"component"},
	)

	m.loginOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "authentication_login_attempts_total",
			Help:        "login attempts partitioned by outcome",
			ConstLabels: prometheus.Labels{"service": m.service},
		},
		[]string{"outcome"},
	)

	m.responseTime = register(r, m.responseTime, logger)
	m.dependencyAvailability = register(r, m.dependencyAvailability, logger)
	m.loginOutcome = register(r, m.loginOutcome, logger)

	return m
}
