// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ProvisionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "provision_total",
			Help: "Cumulative number of site-provisioning attempts.",
		})

	ProvisionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provision_failures_total",
			Help: "Provisioning failures by pipeline step.",
		},
		[]string{"step"})

	CompensationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "compensations_total",
			Help: "Cumulative number of compensating bucket deletions.",
		})

	CreditsCommittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_committed_total",
			Help: "Cumulative number of credits charged.",
		})

	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "External generator calls by kind and outcome.",
		},
		[]string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(
		ProvisionTotal,
		ProvisionFailuresTotal,
		CompensationsTotal,
		CreditsCommittedTotal,
		GenerationsTotal,
	)
}
