package domain

import "time"

// Priority represents item and thread priority level
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ParsePriority maps free text onto a Priority, defaulting to medium
func ParsePriority(p string) Priority {
	switch Priority(p) {
	case PriorityHigh:
		return PriorityHigh
	case PriorityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// ItemType is the kind of remote record a work item represents
type ItemType string

const (
	ItemTypeEmail    ItemType = "email"
	ItemTypeCalendar ItemType = "calendar"
	ItemTypeTask     ItemType = "task"
	ItemTypeMessage  ItemType = "message"
)

// WorkItem is one imported email, event, task or chat message.
// Sync creates it once and never mutates it afterwards.
type WorkItem struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;index:idx_work_items_external,priority:1"`
	ThreadID  string    `json:"thread_id" gorm:"index"`
	Type      ItemType  `json:"type" gorm:"not null"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
	IsRead    bool      `json:"is_read" gorm:"default:false"`
	Priority  Priority  `json:"priority" gorm:"default:medium"`

	// Metadata is the provider-specific bag. It always carries the
	// provider-native id under googleId or microsoftId.
	Metadata map[string]interface{} `json:"metadata" gorm:"type:text;serializer:json"`

	// ExternalKey/ExternalID mirror the metadata id for the dedup lookup.
	ExternalKey string `json:"-" gorm:"index:idx_work_items_external,priority:2"`
	ExternalID  string `json:"-" gorm:"index:idx_work_items_external,priority:3"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
