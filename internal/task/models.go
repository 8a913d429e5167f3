package task

import "time"

type Task struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       uint64     `gorm:"index;not null" json:"-"`
	Title        string     `gorm:"type:varchar(200);not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	Priority     string     `gorm:"type:varchar(16);not null;default:medium" json:"priority"`
	Tags         string     `gorm:"type:varchar(255)" json:"tags"` // comma-separated
	DueAt        *time.Time `json:"due_at,omitempty"`
	RemindAt     *time.Time `gorm:"index" json:"remind_at,omitempty"`
	ReminderSent bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// Patch carries partial updates; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	Tags        *string
	DueAt       *time.Time
	RemindAt    *time.Time
}

type Stats struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Status filters for List.
const (
	StatusAll       = "all"
	StatusActive    = "active"
	StatusCompleted = "completed"
)
