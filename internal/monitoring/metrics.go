// Package monitoring exposes prometheus instruments for the marketplace
// core. Metrics are registered on the default registry and served by the
// /metrics endpoint.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PurchasesTotal counts checkout attempts by terminal outcome:
	// paid, declined, conflict, pending (gateway outcome unknown),
	// assignment_failed.
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_purchases_total",
			Help: "Checkout attempts by outcome",
		},
		[]string{"outcome"},
	)

	// UnitsProvisionedTotal counts inventory units created by the batch
	// provisioner.
	UnitsProvisionedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_units_provisioned_total",
			Help: "Inventory units created by batch provisioning",
		},
	)

	// ClaimsReleasedTotal counts units returned to the pool by the claim
	// sweep.
	ClaimsReleasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_claims_released_total",
			Help: "Reserved units released by the claim expiry sweep",
		},
	)

	// MassStatusUpdatesTotal counts mass status updates by target status.
	MassStatusUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_mass_status_updates_total",
			Help: "Mass wristband status updates by new status",
		},
		[]string{"status"},
	)
)
