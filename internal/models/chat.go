package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageType string

const (
	ChatMessageText   ChatMessageType = "text"
	ChatMessageImage  ChatMessageType = "image"
	ChatMessageSystem ChatMessageType = "system"
)

// Valid reports whether t is one of the known message types
func (t ChatMessageType) Valid() bool {
	return t == ChatMessageText || t == ChatMessageImage || t == ChatMessageSystem
}

type ChatMemberRole string

const (
	ChatRoleCustomer ChatMemberRole = "customer"
	ChatRoleHelper   ChatMemberRole = "helper"
)

// ChatThread is the single conversation attached to an order
type ChatThread struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ChatThread) TableName() string {
	return "chat_threads"
}

func (t *ChatThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ChatMember grants one user access to a thread
type ChatMember struct {
	ThreadID  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"thread_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      ChatMemberRole `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
}

func (ChatMember) TableName() string {
	return "chat_members"
}

// ChatMessage is a single message posted to a thread
type ChatMessage struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ThreadID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_chat_messages_thread_created" json:"thread_id"`
	SenderID  uuid.UUID       `gorm:"type:uuid;not null" json:"sender_id"`
	Type      ChatMessageType `gorm:"size:20;not null;default:text" json:"type"`
	Content   *string         `gorm:"type:text" json:"content"`
	ImageURL  *string         `gorm:"size:1000" json:"image_url"`
	CreatedAt time.Time       `gorm:"index:idx_chat_messages_thread_created" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SendMessageInput is the body of a new chat message
type SendMessageInput struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
}
