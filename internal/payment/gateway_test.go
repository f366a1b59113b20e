package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestStubGatewayReferencesAreUnique(t *testing.T) {
	g := NewStubGateway()
	ctx := context.Background()
	orderID := uuid.New()

	hold, err := g.HoldEscrow(ctx, orderID, 50000)
	if err != nil {
		t.Fatalf("HoldEscrow failed: %v", err)
	}
	payout, err := g.ReleasePayout(ctx, orderID, uuid.New(), 48000)
	if err != nil {
		t.Fatalf("ReleasePayout failed: %v", err)
	}
	refund, err := g.Refund(ctx, orderID, uuid.New(), 50000)
	if err != nil {
		t.Fatalf("Refund failed: %v", err)
	}

	if !strings.HasPrefix(hold, "stub_hold_") || !strings.HasPrefix(payout, "stub_payout_") || !strings.HasPrefix(refund, "stub_refund_") {
		t.Errorf("unexpected refs: %s %s %s", hold, payout, refund)
	}
	if hold == payout || payout == refund {
		t.Errorf("expected distinct refs, got %s %s %s", hold, payout, refund)
	}
}

func TestStubGatewayRejectsNegativeAmounts(t *testing.T) {
	g := NewStubGateway()
	if _, err := g.HoldEscrow(context.Background(), uuid.New(), -1); err == nil {
		t.Error("expected error for negative amount")
	}
}
