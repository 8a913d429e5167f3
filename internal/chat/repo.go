package chat

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) CreateConversation(ctx context.Context, c *Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertMessage appends a message and bumps the conversation's updated_at in
// one transaction; history order is the append order.
func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		return tx.Model(&Conversation{}).
			Where("conversation_id = ?", m.ConversationID).
			Update("updated_at", time.Now()).Error
	})
}

// ListRecentMessagesDesc returns the most recent messages in DESC id order
// (newest -> oldest). Callers reverse it to rebuild model input.
func (r *Repo) ListRecentMessagesDesc(ctx context.Context, userID uint64, conversationID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListMessages returns messages oldest-first for history reads.
func (r *Repo) ListMessages(ctx context.Context, userID uint64, conversationID string, limit int) ([]Message, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var msgs []Message
	if err := q.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// ListConversations returns the user's conversations most-recently-updated
// first, each with its message count.
func (r *Repo) ListConversations(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	var out []ConversationSummary
	err := r.db.WithContext(ctx).
		Model(&Conversation{}).
		Select("conversations.conversation_id, conversations.title, conversations.provider, conversations.model, conversations.created_at, conversations.updated_at, COUNT(conversation_messages.id) AS message_count").
		Joins("LEFT JOIN conversation_messages ON conversation_messages.conversation_id = conversations.conversation_id").
		Where("conversations.user_id = ?", userID).
		Group("conversations.conversation_id, conversations.title, conversations.provider, conversations.model, conversations.created_at, conversations.updated_at").
		Order("conversations.updated_at DESC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
