// Package payment talks to the payment provider that holds customer funds
// in escrow until work is confirmed.
package payment

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Gateway moves money for an order. Each call returns the provider's
// reference for the resulting transaction.
type Gateway interface {
	HoldEscrow(ctx context.Context, orderID uuid.UUID, amount int64) (string, error)
	ReleasePayout(ctx context.Context, orderID uuid.UUID, helperID uuid.UUID, amount int64) (string, error)
	Refund(ctx context.Context, orderID uuid.UUID, customerID uuid.UUID, amount int64) (string, error)
}

// StubGateway accepts every operation without contacting a provider
type StubGateway struct {
	seq atomic.Int64
}

// NewStubGateway creates a gateway that confirms every operation locally
func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (g *StubGateway) ref(kind string, orderID uuid.UUID) string {
	return fmt.Sprintf("stub_%s_%s_%d", kind, orderID.String()[:8], g.seq.Add(1))
}

// HoldEscrow records a hold of the customer's funds
func (g *StubGateway) HoldEscrow(ctx context.Context, orderID uuid.UUID, amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("invalid escrow amount %d", amount)
	}
	ref := g.ref("hold", orderID)
	log.WithFields(log.Fields{"order_id": orderID, "amount": amount, "ref": ref}).Info("[Payment] escrow held")
	return ref, nil
}

// ReleasePayout releases held funds to the helper
func (g *StubGateway) ReleasePayout(ctx context.Context, orderID uuid.UUID, helperID uuid.UUID, amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("invalid payout amount %d", amount)
	}
	ref := g.ref("payout", orderID)
	log.WithFields(log.Fields{"order_id": orderID, "helper_id": helperID, "amount": amount, "ref": ref}).Info("[Payment] payout released")
	return ref, nil
}

// Refund returns held funds to the customer
func (g *StubGateway) Refund(ctx context.Context, orderID uuid.UUID, customerID uuid.UUID, amount int64) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("invalid refund amount %d", amount)
	}
	ref := g.ref("refund", orderID)
	log.WithFields(log.Fields{"order_id": orderID, "customer_id": customerID, "amount": amount, "ref": ref}).Info("[Payment] escrow refunded")
	return ref, nil
}
