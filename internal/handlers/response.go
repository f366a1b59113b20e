package handlers

import (
	"errors"
	"net/http"

	"github.com/Desla-ai/Doeum/internal/auth"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal server error"

var errorStatuses = []struct {
	kind   error
	status int
}{
	{services.ErrUnauthorized, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrValidation, http.StatusBadRequest},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrConflict, http.StatusConflict},
	{services.ErrInvalidTransition, http.StatusConflict},
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": gin.H{"message": message}})
}

// respondError maps service errors to statuses. Unclassified errors are
// logged and reported with a generic message.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.kind) {
			respondMessage(c, e.status, err.Error())
			return
		}
	}

	log.WithFields(log.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).WithError(err).Error("Unhandled error")
	respondMessage(c, http.StatusInternalServerError, internalErrorMessage)
}

// currentUser returns the authenticated caller or writes a 401
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// uuidParam parses a path parameter or writes a 400
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body or writes a 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondMessage(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
