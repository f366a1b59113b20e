package handlers

import (
	"net/http"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler handles the caller's identity, profile and addresses
type UserHandler struct {
	profileService *services.ProfileService
	addressService *services.AddressService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profileService *services.ProfileService, addressService *services.AddressService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		addressService: addressService,
	}
}

// Me returns the authenticated user's id
// GET /api/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": userID})
}

// GetProfile returns the current user's profile
// GET /api/profiles/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, profile)
}

// UpdateProfile patches the current user's profile
// PATCH /api/profiles/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, profile)
}

// ListAddresses lists the caller's saved addresses
// GET /api/addresses
func (h *UserHandler) ListAddresses(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	addresses, err := h.addressService.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, addresses)
}

// AddAddress saves an address
// POST /api/addresses
func (h *UserHandler) AddAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.AddressInput
	if !bindJSON(c, &input) {
		return
	}

	address, err := h.addressService.AddAddress(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, address)
}

// DeleteAddress soft-deletes an address
// DELETE /api/addresses/:id
func (h *UserHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.addressService.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"id": addressID})
}
