// Package payment abstracts the external payment gateway. The marketplace
// only needs a binary outcome plus an opaque reference; everything else
// about the provider is out of scope, so the interface stays deliberately
// small and the settlement flow treats it as opaque.
package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Provider identifies a gateway implementation.
type Provider string

const (
	// ProviderSimulated approves or declines charges locally without any
	// network call. It is the only provider wired today; real gateway
	// credentials still travel with each charge so a live adapter can be
	// dropped in behind the same interface.
	ProviderSimulated Provider = "simulated"
)

// ChargeRequest carries everything a provider needs for one charge. The
// API key/token pair comes from the payment settings configured by the
// event's company.
type ChargeRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Reference   string // receivable ID, used for reconciliation
	BuyerUserID string
	APIKey      string
	APIToken    string
	Description string
}

// Outcome is the definitive result of a charge. Approved with a GatewayRef
// on success, declined with a Reason otherwise. A transport-level failure
// is returned as an error instead and means the outcome is unknown, not
// declined.
type Outcome struct {
	Approved   bool
	GatewayRef string
	Reason     string
}

// Gateway is the single capability the settlement flow consumes.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Outcome, error)
}

// New builds a Gateway for the configured provider. approvalRate only
// applies to the simulated provider.
func New(provider Provider, approvalRate float64) (Gateway, error) {
	switch provider {
	case ProviderSimulated:
		return NewSimulatedGateway(approvalRate), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider: %s", provider)
	}
}
