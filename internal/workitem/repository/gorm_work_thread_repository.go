package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workhub-backend/internal/workitem/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormWorkThreadRepository implements WorkThreadRepository using GORM
type gormWorkThreadRepository struct {
	db *gorm.DB
}

// NewGormWorkThreadRepository creates a new GORM-based WorkThreadRepository
func NewGormWorkThreadRepository(db *gorm.DB) WorkThreadRepository {
	return &gormWorkThreadRepository{db: db}
}

func (r *gormWorkThreadRepository) Create(ctx context.Context, thread *domain.WorkThread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	if thread.ItemIDs == nil {
		thread.ItemIDs = []string{}
	}
	thread.CreatedAt = time.Now()
	thread.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(thread).Error
}

func (r *gormWorkThreadRepository) FindByID(ctx context.Context, id string) (*domain.WorkThread, error) {
	var thread domain.WorkThread
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *gormWorkThreadRepository) FindByTitle(ctx context.Context, userID, title string) (*domain.WorkThread, error) {
	var thread domain.WorkThread
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND title = ?", userID, title).
		Order("created_at ASC").
		First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &thread, nil
}

func (r *gormWorkThreadRepository) AttachItem(ctx context.Context, threadID, itemID string, itemPriority domain.Priority, at time.Time) error {
	// Row lock held until commit; concurrent attaches must not drop item ids
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread domain.WorkThread
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", threadID).
			First(&thread).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("thread %s not found", threadID)
			}
			return err
		}

		thread.AddItem(itemID, itemPriority, at)
		thread.UpdatedAt = time.Now()

		return tx.Model(&thread).
			Select("item_ids", "last_activity", "priority", "updated_at").
			Updates(&thread).Error
	})
}
