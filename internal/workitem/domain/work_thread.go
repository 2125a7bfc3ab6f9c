package domain

import "time"

// ImportThreadTitle names the per-user catch-all thread for synced items
const ImportThreadTitle = "External Imports"

// WorkThread groups related work items
type WorkThread struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;index:idx_work_threads_user_title"`
	Title         string    `json:"title" gorm:"index:idx_work_threads_user_title"`
	Description   string    `json:"description"`
	Priority      Priority  `json:"priority" gorm:"default:medium"`
	Progress      int       `json:"progress" gorm:"default:0"`
	LastActivity  time.Time `json:"last_activity"`
	ItemIDs       []string  `json:"item_ids" gorm:"type:text;serializer:json"`
	RelatedPeople []string  `json:"related_people" gorm:"type:text;serializer:json"`
	Tags          []string  `json:"tags" gorm:"type:text;serializer:json"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddItem inserts itemID into ItemIDs keeping set semantics, bumps
// LastActivity and escalates Priority to high for a high item. Priority is
// never lowered. It reports whether the id was newly added.
func (t *WorkThread) AddItem(itemID string, itemPriority Priority, now time.Time) bool {
	added := true
	for _, id := range t.ItemIDs {
		if id == itemID {
			added = false
			break
		}
	}
	if added {
		t.ItemIDs = append(t.ItemIDs, itemID)
	}
	if now.After(t.LastActivity) {
		t.LastActivity = now
	}
	if itemPriority == PriorityHigh {
		t.Priority = PriorityHigh
	}
	return added
}
