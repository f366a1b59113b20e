package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minProposalMessageLength = 5
	minProposedPrice         = 1000
)

// ProposalService handles helper bids and their selection into orders
type ProposalService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	fx      sideEffects
}

// NewProposalService creates a new ProposalService
func NewProposalService(repo *repository.Repository, m *metrics.Metrics) *ProposalService {
	return &ProposalService{repo: repo, metrics: m, fx: sideEffects{metrics: m}}
}

// SubmitProposal records a helper's bid on an open request
func (s *ProposalService) SubmitProposal(
	ctx context.Context,
	helperID uuid.UUID,
	requestID uuid.UUID,
	input models.SubmitProposalInput,
) (*models.Proposal, error) {
	message := strings.TrimSpace(input.Message)
	if utf8.RuneCountInString(message) < minProposalMessageLength {
		return nil, validationError("message must be at least %d characters", minProposalMessageLength)
	}
	if input.ProposedPrice != nil && *input.ProposedPrice < minProposedPrice {
		return nil, validationError("proposed_price must be at least %d", minProposedPrice)
	}

	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "request")
	}
	if req.CustomerID == helperID {
		return nil, forbiddenError("cannot propose on your own request")
	}
	if req.Status != models.RequestStatusPosted {
		return nil, conflictError("request is no longer accepting proposals")
	}

	proposal := &models.Proposal{
		RequestID:     requestID,
		HelperID:      helperID,
		Message:       message,
		ProposedPrice: input.ProposedPrice,
		Status:        models.ProposalStatusPending,
	}
	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	log.WithFields(log.Fields{"proposal_id": proposal.ID, "request_id": requestID, "helper_id": helperID}).
		Info("[Proposal] submitted")
	return proposal, nil
}

// SelectProposal accepts one proposal, rejects the others, and creates the
// order in a single transaction
func (s *ProposalService) SelectProposal(
	ctx context.Context,
	customerID uuid.UUID,
	requestID uuid.UUID,
	proposalID uuid.UUID,
) (*models.Order, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, lookupError(err, "request")
	}
	if req.CustomerID != customerID {
		return nil, forbiddenError("not the owner of this request")
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, lookupError(err, "proposal")
	}
	if proposal.RequestID != req.ID {
		return nil, validationError("proposal does not belong to this request")
	}
	if proposal.Status == models.ProposalStatusWithdrawn {
		return nil, validationError("proposal was withdrawn")
	}

	amount := req.Price
	if proposal.ProposedPrice != nil {
		amount = *proposal.ProposedPrice
	}

	order := &models.Order{
		RequestID:  req.ID,
		CustomerID: req.CustomerID,
		HelperID:   proposal.HelperID,
		Status:     models.OrderStatusAccepted,
		Amount:     amount,
		AddressID:  req.AddressID,
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		existing, err := tx.CountOrdersForRequest(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to check existing order: %w", err)
		}
		if existing > 0 {
			return conflictError("an order already exists for this request")
		}

		accepted, err := tx.UpdateProposalStatus(ctx, proposal.ID, models.ProposalStatusPending, models.ProposalStatusAccepted)
		if err != nil {
			return fmt.Errorf("failed to accept proposal: %w", err)
		}
		if accepted == 0 {
			return conflictError("proposal is no longer pending")
		}
		if err := tx.RejectOtherProposals(ctx, req.ID, proposal.ID); err != nil {
			return fmt.Errorf("failed to reject other proposals: %w", err)
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflictError("an order already exists for this request")
			}
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordProposalSelected()
	log.WithFields(log.Fields{"order_id": order.ID, "request_id": req.ID, "proposal_id": proposal.ID}).
		Info("[Proposal] selected, order created")

	s.fx.run(ctx, "request_status", log.Fields{"request_id": req.ID}, func(ctx context.Context) error {
		return s.repo.UpdateRequestStatus(ctx, req.ID, models.RequestStatusAwaitingPayment)
	})

	return order, nil
}

// WithdrawProposal lets a helper retract their own pending proposal.
// Another helper's proposal is reported as missing.
func (s *ProposalService) WithdrawProposal(ctx context.Context, helperID, proposalID uuid.UUID) (*models.Proposal, error) {
	changed, err := s.repo.UpdateHelperProposalStatus(
		ctx, proposalID, helperID, models.ProposalStatusPending, models.ProposalStatusWithdrawn,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw proposal: %w", err)
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, lookupError(err, "proposal")
	}
	if proposal.HelperID != helperID {
		return nil, notFoundError("proposal not found")
	}
	if changed == 0 {
		return nil, conflictError("proposal is already %s", proposal.Status)
	}
	return proposal, nil
}

// RejectProposal lets the request owner decline a pending proposal
func (s *ProposalService) RejectProposal(ctx context.Context, customerID, proposalID uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, lookupError(err, "proposal")
	}

	req, err := s.repo.GetRequestByID(ctx, proposal.RequestID)
	if err != nil {
		return nil, lookupError(err, "request")
	}
	if req.CustomerID != customerID {
		return nil, forbiddenError("not the owner of this request")
	}

	changed, err := s.repo.UpdateProposalStatus(ctx, proposalID, models.ProposalStatusPending, models.ProposalStatusRejected)
	if err != nil {
		return nil, fmt.Errorf("failed to reject proposal: %w", err)
	}

	proposal, err = s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, lookupError(err, "proposal")
	}
	if changed == 0 {
		return nil, conflictError("proposal is already %s", proposal.Status)
	}
	return proposal, nil
}
