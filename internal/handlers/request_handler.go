package handlers

import (
	"net/http"
	"strconv"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requestService  *services.RequestService
	proposalService *services.ProposalService
}

func NewRequestHandler(requestService *services.RequestService, proposalService *services.ProposalService) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		proposalService: proposalService,
	}
}

// CreateRequest posts a new service request
// POST /api/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.NewRequestInput
	if !bindJSON(c, &input) {
		return
	}

	req, err := h.requestService.CreateRequest(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, req)
}

// ListRequests lists the caller's requests
// GET /api/requests
func (h *RequestHandler) ListRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	requests, err := h.requestService.ListRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, requests)
}

// HelperFeed lists open requests in a region
// GET /api/requests/feed?sigungu=&dong=&limit=
func (h *RequestHandler) HelperFeed(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	requests, err := h.requestService.HelperFeed(c.Request.Context(), c.Query("sigungu"), c.Query("dong"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, requests)
}

// GetRequest returns a request with its proposals
// GET /api/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.requestService.GetRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, detail)
}

// ListProposals lists proposals on the caller's request
// GET /api/requests/:id/proposals
func (h *RequestHandler) ListProposals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.requestService.ListProposals(c.Request.Context(), userID, requestID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, proposals)
}

// SubmitProposal bids on a request
// POST /api/requests/:id/proposals
func (h *RequestHandler) SubmitProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input models.SubmitProposalInput
	if !bindJSON(c, &input) {
		return
	}

	proposal, err := h.proposalService.SubmitProposal(c.Request.Context(), userID, requestID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, proposal)
}

type selectProposalBody struct {
	ProposalID string `json:"proposal_id"`
}

// SelectProposal accepts a proposal and creates the order
// POST /api/requests/:id/select-proposal
func (h *RequestHandler) SelectProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requestID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var body selectProposalBody
	if !bindJSON(c, &body) {
		return
	}
	proposalID, err := uuid.Parse(body.ProposalID)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "proposal_id is required")
		return
	}

	order, err := h.proposalService.SelectProposal(c.Request.Context(), userID, requestID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// RejectProposal declines a proposal on the caller's request
// POST /api/proposals/:id/reject
func (h *RequestHandler) RejectProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.RejectProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, proposal)
}

// WithdrawProposal retracts the caller's own proposal
// POST /api/proposals/:id/withdraw
func (h *RequestHandler) WithdrawProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.WithdrawProposal(c.Request.Context(), userID, proposalID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, proposal)
}
