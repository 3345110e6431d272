package payment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// SimulatedGateway approves a configurable fraction of charges, mirroring
// the behavior of the gateway sandbox: an approved charge yields an
// "MP-<millis>" reference, a declined one yields a generic decline reason.
// It never returns a transport error, so every simulated outcome is
// definitive.
type SimulatedGateway struct {
	approvalRate float64

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewSimulatedGateway returns a gateway approving approvalRate of charges.
// Rates at or below 0 decline everything; at or above 1 approve everything,
// which makes the gateway deterministic for tests.
func NewSimulatedGateway(approvalRate float64) *SimulatedGateway {
	return &SimulatedGateway{
		approvalRate: approvalRate,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
}

// Charge implements Gateway.
func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if req.APIKey == "" || req.APIToken == "" {
		return Outcome{}, fmt.Errorf("missing gateway credentials for charge %s", req.Reference)
	}
	if req.Amount.IsNegative() {
		return Outcome{Approved: false, Reason: "invalid charge amount"}, nil
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	at := g.now()
	g.mu.Unlock()

	if roll < g.approvalRate {
		return Outcome{
			Approved:   true,
			GatewayRef: fmt.Sprintf("MP-%d", at.UnixMilli()),
		}, nil
	}
	return Outcome{Approved: false, Reason: "charge declined by issuer"}, nil
}
