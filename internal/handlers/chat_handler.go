package handlers

import (
	"net/http"
	"strconv"

	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type createThreadBody struct {
	OrderID string `json:"order_id"`
}

// CreateThread returns the order's chat thread, creating it if needed
// POST /api/chat/threads
func (h *ChatHandler) CreateThread(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var body createThreadBody
	if !bindJSON(c, &body) {
		return
	}
	orderID, err := uuid.Parse(body.OrderID)
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "order_id is required")
		return
	}

	thread, err := h.chatService.GetOrCreateThread(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, thread)
}

// ListMessages pages through a thread
// GET /api/chat/threads/:id/messages?cursor=&limit=
func (h *ChatHandler) ListMessages(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	threadID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	messages, err := h.chatService.ListMessages(c.Request.Context(), userID, threadID, c.Query("cursor"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, messages)
}

// SendMessage posts a message to a thread
// POST /api/chat/threads/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	threadID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var input models.SendMessageInput
	if !bindJSON(c, &input) {
		return
	}

	msg, err := h.chatService.SendMessage(c.Request.Context(), userID, threadID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, msg)
}
