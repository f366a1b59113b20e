package services

import (
	"context"
	"testing"
	"time"

	"github.com/Desla-ai/Doeum/internal/models"

	"github.com/google/uuid"
)

func TestGetOrCreateThreadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, customer, helper := env.newOrder(t, 50000)

	first, err := env.chat.GetOrCreateThread(ctx, customer, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}
	second, err := env.chat.GetOrCreateThread(ctx, helper, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same thread, got %s and %s", first.ID, second.ID)
	}

	var threads int64
	env.db.Model(&models.ChatThread{}).Where("order_id = ?", order.ID).Count(&threads)
	if threads != 1 {
		t.Errorf("expected 1 thread, got %d", threads)
	}

	var members []models.ChatMember
	env.db.Where("thread_id = ?", first.ID).Find(&members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	for _, m := range members {
		switch m.UserID {
		case customer:
			if m.Role != models.ChatRoleCustomer {
				t.Errorf("expected customer role, got %s", m.Role)
			}
		case helper:
			if m.Role != models.ChatRoleHelper {
				t.Errorf("expected helper role, got %s", m.Role)
			}
		default:
			t.Errorf("unexpected member %s", m.UserID)
		}
	}

	_, err = env.chat.GetOrCreateThread(ctx, uuid.New(), order.ID)
	expectKind(t, err, ErrForbidden)

	_, err = env.chat.GetOrCreateThread(ctx, customer, uuid.New())
	expectKind(t, err, ErrNotFound)
}

func TestSendAndListMessages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, customer, helper := env.newOrder(t, 50000)

	thread, err := env.chat.GetOrCreateThread(ctx, customer, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}

	var sent []*models.ChatMessage
	for i, sender := range []uuid.UUID{customer, helper, customer} {
		msg, err := env.chat.SendMessage(ctx, sender, thread.ID, models.SendMessageInput{Content: "안녕하세요 " + string(rune('A'+i))})
		if err != nil {
			t.Fatalf("SendMessage failed: %v", err)
		}
		if msg.Type != models.ChatMessageText || msg.SenderID != sender {
			t.Errorf("unexpected message: %+v", msg)
		}
		sent = append(sent, msg)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := env.chat.ListMessages(ctx, helper, thread.ID, "", 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != sent[0].ID || all[2].ID != sent[2].ID {
		t.Fatalf("expected 3 messages oldest first, got %d", len(all))
	}

	cursor := all[0].CreatedAt.Format(time.RFC3339Nano)
	after, err := env.chat.ListMessages(ctx, helper, thread.ID, cursor, 0)
	if err != nil {
		t.Fatalf("ListMessages with cursor failed: %v", err)
	}
	if len(after) != 2 || after[0].ID != sent[1].ID {
		t.Errorf("expected messages strictly after cursor, got %d", len(after))
	}

	limited, err := env.chat.ListMessages(ctx, helper, thread.ID, "", 1)
	if err != nil {
		t.Fatalf("ListMessages with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 message, got %d", len(limited))
	}

	_, err = env.chat.ListMessages(ctx, helper, thread.ID, "yesterday", 0)
	expectKind(t, err, ErrValidation)

	_, err = env.chat.ListMessages(ctx, uuid.New(), thread.ID, "", 0)
	expectKind(t, err, ErrForbidden)

	_, err = env.chat.SendMessage(ctx, uuid.New(), thread.ID, models.SendMessageInput{Content: "끼어들기"})
	expectKind(t, err, ErrForbidden)

	_, err = env.chat.ListMessages(ctx, customer, uuid.New(), "", 0)
	expectKind(t, err, ErrNotFound)
}

func TestSendMessageValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, customer, _ := env.newOrder(t, 50000)
	thread, err := env.chat.GetOrCreateThread(ctx, customer, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}

	tests := []struct {
		name  string
		input models.SendMessageInput
	}{
		{"unknown type", models.SendMessageInput{Type: "video", Content: "hi"}},
		{"empty text", models.SendMessageInput{Content: "   "}},
		{"image without url", models.SendMessageInput{Type: "image", Content: "사진"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.chat.SendMessage(ctx, customer, thread.ID, tt.input)
			expectKind(t, err, ErrValidation)
		})
	}

	msg, err := env.chat.SendMessage(ctx, customer, thread.ID, models.SendMessageInput{
		Type: "image", ImageURL: "https://cdn.example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("SendMessage image failed: %v", err)
	}
	if msg.ImageURL == nil || *msg.ImageURL != "https://cdn.example.com/a.jpg" || msg.Content != nil {
		t.Errorf("unexpected image message: %+v", msg)
	}

	system, err := env.chat.SendMessage(ctx, customer, thread.ID, models.SendMessageInput{Type: "system"})
	if err != nil {
		t.Fatalf("SendMessage system failed: %v", err)
	}
	if system.Type != models.ChatMessageSystem || system.Content != nil {
		t.Errorf("unexpected system message: %+v", system)
	}
}

func TestSendMessageChecksMembershipBeforeBody(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, customer, _ := env.newOrder(t, 50000)
	thread, err := env.chat.GetOrCreateThread(ctx, customer, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}

	outsider := uuid.New()
	for _, input := range []models.SendMessageInput{
		{Type: "video"},
		{Content: "   "},
		{Type: "image"},
	} {
		_, err := env.chat.SendMessage(ctx, outsider, thread.ID, input)
		expectKind(t, err, ErrForbidden)
	}

	_, err = env.chat.SendMessage(ctx, customer, uuid.New(), models.SendMessageInput{Type: "video"})
	expectKind(t, err, ErrNotFound)
}

func TestThreadAccessFallsBackToOrderParticipants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	order, customer, helper := env.newOrder(t, 50000)

	thread, err := env.chat.GetOrCreateThread(ctx, customer, order.ID)
	if err != nil {
		t.Fatalf("GetOrCreateThread failed: %v", err)
	}

	// simulate a lost best-effort membership write
	if err := env.db.Where("thread_id = ?", thread.ID).Delete(&models.ChatMember{}).Error; err != nil {
		t.Fatalf("failed to delete members: %v", err)
	}

	if _, err := env.chat.SendMessage(ctx, helper, thread.ID, models.SendMessageInput{Content: "도착했습니다"}); err != nil {
		t.Fatalf("participant without membership row must still send: %v", err)
	}
	if _, err := env.chat.ListMessages(ctx, customer, thread.ID, "", 0); err != nil {
		t.Fatalf("participant without membership row must still read: %v", err)
	}

	_, err = env.chat.ListMessages(ctx, uuid.New(), thread.ID, "", 0)
	expectKind(t, err, ErrForbidden)
}
