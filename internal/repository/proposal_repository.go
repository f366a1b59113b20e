package repository

import (
	"context"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
)

// CreateProposal inserts a new proposal
func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

// GetProposalByID retrieves a proposal by ID
func (r *Repository) GetProposalByID(ctx context.Context, proposalID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("id = ?", proposalID).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetRequestProposals retrieves the proposals made on a request, newest first
func (r *Repository) GetRequestProposals(ctx context.Context, requestID uuid.UUID) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&proposals).Error

	if err != nil {
		return nil, err
	}

	return proposals, nil
}

// UpdateProposalStatus moves a proposal from status from to status to.
// Returns the number of rows changed; zero means the proposal is missing or
// no longer in from.
func (r *Repository) UpdateProposalStatus(
	ctx context.Context,
	proposalID uuid.UUID,
	from models.ProposalStatus,
	to models.ProposalStatus,
) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// UpdateHelperProposalStatus is UpdateProposalStatus scoped to proposals
// owned by helperID
func (r *Repository) UpdateHelperProposalStatus(
	ctx context.Context,
	proposalID uuid.UUID,
	helperID uuid.UUID,
	from models.ProposalStatus,
	to models.ProposalStatus,
) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("id = ? AND helper_id = ? AND status = ?", proposalID, helperID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// RejectOtherProposals marks every pending proposal of a request except
// keepID as rejected
func (r *Repository) RejectOtherProposals(ctx context.Context, requestID uuid.UUID, keepID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("request_id = ? AND id <> ? AND status = ?", requestID, keepID, models.ProposalStatusPending).
		Update("status", models.ProposalStatusRejected).Error
}
