package file

import "time"

type File struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"index;not null" json:"-"`
	OriginalName  string    `gorm:"type:varchar(255);not null" json:"original_name"`
	StoredName    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ContentType   string    `gorm:"type:varchar(128)" json:"content_type"`
	Size          int64     `gorm:"not null" json:"size"`
	ExtractedText string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (File) TableName() string { return "files" }
