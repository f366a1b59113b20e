package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/models"
	"github.com/Desla-ai/Doeum/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

// ChatService handles the conversation between an order's participants
type ChatService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	fx      sideEffects
}

// NewChatService creates a new ChatService
func NewChatService(repo *repository.Repository, m *metrics.Metrics) *ChatService {
	return &ChatService{repo: repo, metrics: m, fx: sideEffects{metrics: m}}
}

// GetOrCreateThread returns the order's thread, creating it and its
// memberships on first use
func (s *ChatService) GetOrCreateThread(ctx context.Context, userID, orderID uuid.UUID) (*models.ChatThread, error) {
	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "order")
	}
	if !order.IsParticipant(userID) {
		return nil, forbiddenError("not a participant of this order")
	}

	thread, err := s.repo.UpsertThread(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	s.fx.run(ctx, "chat_members", log.Fields{"thread_id": thread.ID, "order_id": order.ID}, func(ctx context.Context) error {
		return s.repo.UpsertThreadMembers(ctx, []*models.ChatMember{
			{ThreadID: thread.ID, UserID: order.CustomerID, Role: models.ChatRoleCustomer},
			{ThreadID: thread.ID, UserID: order.HelperID, Role: models.ChatRoleHelper},
		})
	})

	return thread, nil
}

// ListMessages returns messages oldest first. cursor, when set, is an RFC 3339
// timestamp and only later messages are returned.
func (s *ChatService) ListMessages(
	ctx context.Context,
	userID uuid.UUID,
	threadID uuid.UUID,
	cursor string,
	limit int,
) ([]*models.ChatMessage, error) {
	if err := s.authorizeThread(ctx, userID, threadID); err != nil {
		return nil, err
	}

	var after *time.Time
	if cursor = strings.TrimSpace(cursor); cursor != "" {
		t, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, validationError("cursor must be an RFC 3339 timestamp")
		}
		t = t.UTC()
		after = &t
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	messages, err := s.repo.GetThreadMessages(ctx, threadID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

// SendMessage stores a message from the caller in the thread
func (s *ChatService) SendMessage(
	ctx context.Context,
	userID uuid.UUID,
	threadID uuid.UUID,
	input models.SendMessageInput,
) (*models.ChatMessage, error) {
	if err := s.authorizeThread(ctx, userID, threadID); err != nil {
		return nil, err
	}

	msgType := models.ChatMessageType(strings.TrimSpace(input.Type))
	if msgType == "" {
		msgType = models.ChatMessageText
	}
	if !msgType.Valid() {
		return nil, validationError("unknown message type %q", input.Type)
	}

	content := strings.TrimSpace(input.Content)
	imageURL := strings.TrimSpace(input.ImageURL)

	msg := &models.ChatMessage{
		ThreadID: threadID,
		SenderID: userID,
		Type:     msgType,
	}

	switch msgType {
	case models.ChatMessageImage:
		if imageURL == "" {
			return nil, validationError("image_url is required for image messages")
		}
		msg.ImageURL = &imageURL
		if content != "" {
			msg.Content = &content
		}
	case models.ChatMessageText:
		if content == "" {
			return nil, validationError("content is required")
		}
		msg.Content = &content
	default:
		if content != "" {
			msg.Content = &content
		}
	}

	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.metrics.RecordChatMessage(string(msgType))
	return msg, nil
}

// authorizeThread admits thread members, falling back to the order's
// participants when the membership rows were never written
func (s *ChatService) authorizeThread(ctx context.Context, userID, threadID uuid.UUID) error {
	thread, err := s.repo.GetThreadByID(ctx, threadID)
	if err != nil {
		return lookupError(err, "thread")
	}

	member, err := s.repo.IsThreadMember(ctx, thread.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if member {
		return nil
	}

	order, err := s.repo.GetOrderByID(ctx, thread.OrderID)
	if err != nil {
		return lookupError(err, "order")
	}
	if !order.IsParticipant(userID) {
		return forbiddenError("not a member of this thread")
	}
	return nil
}
