package repository

import (
	"context"
	"errors"
	"time"

	"workhub-backend/internal/workitem/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormWorkItemRepository implements WorkItemRepository using GORM
type gormWorkItemRepository struct {
	db *gorm.DB
}

// NewGormWorkItemRepository creates a new GORM-based WorkItemRepository
func NewGormWorkItemRepository(db *gorm.DB) WorkItemRepository {
	return &gormWorkItemRepository{db: db}
}

func (r *gormWorkItemRepository) Create(ctx context.Context, item *domain.WorkItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *gormWorkItemRepository) FindByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	var item domain.WorkItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *gormWorkItemRepository) ExistsByExternalID(ctx context.Context, userID, key, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.WorkItem{}).
		Where("user_id = ? AND external_key = ? AND external_id = ?", userID, key, externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormWorkItemRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.WorkItem, int64, error) {
	var items []*domain.WorkItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkItem{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("timestamp DESC, created_at DESC").
		Limit(limit).Offset(offset).Find(&items).Error

	return items, total, err
}
