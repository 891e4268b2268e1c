package repository

import (
	"context"
	"time"

	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"gorm.io/gorm"
)

type gormInstanceRepository struct {
	db *gorm.DB
}

// NewInstanceRepository creates the sqlite-backed instance store.
func NewInstanceRepository(db *gorm.DB) InstanceRepository {
	return &gormInstanceRepository{db: db}
}

func (r *gormInstanceRepository) Create(ctx context.Context, instance *model.Instance) error {
	return r.db.WithContext(ctx).Create(instance).Error
}

func (r *gormInstanceRepository) GetByID(ctx context.Context, id string) (*model.Instance, error) {
	var instance model.Instance
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&instance).Error; err != nil {
		return nil, normalizeGormErr(err)
	}
	return &instance, nil
}

func (r *gormInstanceRepository) List(ctx context.Context) ([]*model.Instance, error) {
	var instances []*model.Instance
	if err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *gormInstanceRepository) ListByUser(ctx context.Context, userID string) ([]*model.Instance, error) {
	var instances []*model.Instance
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&instances).Error; err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *gormInstanceRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.Instance{}).
		Where("user_id = ? AND status IN ?", userID, ActiveStatuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *gormInstanceRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Instance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormInstanceRepository) MarkStopped(ctx context.Context, id string, stoppedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.Instance{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     "stopped",
			"stopped_at": stoppedAt,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormInstanceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Instance{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
