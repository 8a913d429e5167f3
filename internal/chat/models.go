package chat

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Conversation struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string    `gorm:"type:varchar(26);uniqueIndex;not null" json:"conversation_id"`
	UserID         uint64    `gorm:"index;not null" json:"-"`
	Title          string    `gorm:"type:varchar(200)" json:"title"`
	Provider       string    `gorm:"type:varchar(32);not null" json:"provider"`
	Model          string    `gorm:"type:varchar(64);not null" json:"model"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID             uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string       `gorm:"type:varchar(26);not null;index:idx_msg_user_conv_id,priority:2" json:"conversation_id"`
	UserID         uint64       `gorm:"not null;index:idx_msg_user_conv_id,priority:1" json:"-"`
	Role           string       `gorm:"type:varchar(16);index;not null" json:"role"`
	Content        string       `gorm:"type:text;not null" json:"content"`
	ToolCallID     string       `gorm:"type:varchar(64)" json:"tool_call_id,omitempty"`
	ToolCalls      ToolCallList `gorm:"type:text" json:"tool_calls,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

func (Message) TableName() string { return "conversation_messages" }

// ToolCallRecord is the persisted shape of one tool invocation the model
// requested in an assistant message.
type ToolCallRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCallList stores tool-call records as a JSON text column.
type ToolCallList []ToolCallRecord

func (l ToolCallList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ToolCallList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("chat: unsupported tool_calls column type")
	}
}

// ConversationSummary is the list view: conversation plus its message count.
type ConversationSummary struct {
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	MessageCount   int64     `json:"message_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
