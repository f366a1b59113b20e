package services

import (
	"context"
	"fmt"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/payment"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PayoutService moves escrowed funds through the payment gateway and keeps
// the order's payment ledger
type PayoutService struct {
	gateway    payment.Gateway
	repo       *repository.Repository
	feePercent decimal.Decimal
}

// NewPayoutService creates a new PayoutService. feePercent is a decimal
// string such as "4" or "3.5".
func NewPayoutService(
	gateway payment.Gateway,
	repo *repository.Repository,
	feePercent string,
) (*PayoutService, error) {
	pct, err := decimal.NewFromString(feePercent)
	if err != nil {
		return nil, fmt.Errorf("invalid platform fee percent %q: %w", feePercent, err)
	}
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("platform fee percent %s out of range", pct)
	}

	return &PayoutService{
		gateway:    gateway,
		repo:       repo,
		feePercent: pct,
	}, nil
}

// FeePercent returns the configured platform fee percent
func (ps *PayoutService) FeePercent() decimal.Decimal {
	return ps.feePercent
}

// PlatformFee computes the fee on amount, rounded half-up to whole won
func (ps *PayoutService) PlatformFee(amount int64) int64 {
	return decimal.NewFromInt(amount).
		Mul(ps.feePercent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

// EscrowTotal is what the customer pays in: the service amount plus the fee
func (ps *PayoutService) EscrowTotal(amount int64) int64 {
	return amount + ps.PlatformFee(amount)
}

// Settle performs the money movement implied by an order reaching status to.
// from is the status the order left.
func (ps *PayoutService) Settle(ctx context.Context, order *models.Order, from, to models.OrderStatus) error {
	switch to {
	case models.OrderStatusEscrowHeld:
		return ps.holdEscrow(ctx, order)
	case models.OrderStatusPaidOut:
		return ps.executePayout(ctx, order)
	case models.OrderStatusCancelled:
		return ps.refundIfHeld(ctx, order, from)
	}
	return nil
}

func (ps *PayoutService) holdEscrow(ctx context.Context, order *models.Order) error {
	total := ps.EscrowTotal(order.Amount)
	ref, err := ps.gateway.HoldEscrow(ctx, order.ID, total)
	if err != nil {
		return fmt.Errorf("failed to hold escrow: %w", err)
	}

	return ps.record(ctx, order, models.PaymentTypeEscrowHold, total, ref)
}

// executePayout releases the service amount to the helper and books the
// platform fee held on top of it
func (ps *PayoutService) executePayout(ctx context.Context, order *models.Order) error {
	feeAmount := ps.PlatformFee(order.Amount)
	payoutAmount := order.Amount

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.Amount + feeAmount,
		"fee":      feeAmount,
		"percent":  ps.feePercent.String(),
		"payout":   payoutAmount,
	}).Info("[Payout] executing payout")

	ref, err := ps.gateway.ReleasePayout(ctx, order.ID, order.HelperID, payoutAmount)
	if err != nil {
		return fmt.Errorf("failed to release funds from escrow: %w", err)
	}

	if err := ps.record(ctx, order, models.PaymentTypePayout, payoutAmount, ref); err != nil {
		return err
	}
	return ps.record(ctx, order, models.PaymentTypePlatformFee, feeAmount, ref)
}

// refundIfHeld returns escrowed funds when an order is cancelled after escrow
func (ps *PayoutService) refundIfHeld(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	if from == models.OrderStatusAccepted {
		return nil
	}

	held, err := ps.repo.HasPaymentOfType(ctx, order.ID, models.PaymentTypeEscrowHold)
	if err != nil {
		return fmt.Errorf("failed to check escrow: %w", err)
	}
	if !held {
		log.WithField("order_id", order.ID).Warn("[Payout] cancelled after escrow but no hold recorded, skipping refund")
		return nil
	}

	total := ps.EscrowTotal(order.Amount)
	ref, err := ps.gateway.Refund(ctx, order.ID, order.CustomerID, total)
	if err != nil {
		return fmt.Errorf("failed to refund escrow: %w", err)
	}

	return ps.record(ctx, order, models.PaymentTypeRefund, total, ref)
}

func (ps *PayoutService) record(
	ctx context.Context,
	order *models.Order,
	kind models.PaymentTransactionType,
	amount int64,
	ref string,
) error {
	tx := &models.PaymentTransaction{
		OrderID:    order.ID,
		Type:       kind,
		Amount:     amount,
		GatewayRef: ref,
		Status:     models.PaymentStatusConfirmed,
	}
	if err := ps.repo.CreatePaymentTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to record %s transaction: %w", kind, err)
	}
	return nil
}
