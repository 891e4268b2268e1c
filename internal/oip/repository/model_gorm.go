package repository

import (
	"context"

	"github.com/ollamacloud/oip/internal/oip/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormModelRepository struct {
	db *gorm.DB
}

// NewModelRepository creates the sqlite-backed catalog store.
func NewModelRepository(db *gorm.DB) ModelRepository {
	return &gormModelRepository{db: db}
}

// Put inserts or replaces a catalog entry, keyed by model ID.
func (r *gormModelRepository) Put(ctx context.Context, m *model.Model) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "model_id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *gormModelRepository) GetByID(ctx context.Context, id string) (*model.Model, error) {
	var m model.Model
	if err := r.db.WithContext(ctx).Where("model_id = ?", id).First(&m).Error; err != nil {
		return nil, normalizeGormErr(err)
	}
	return &m, nil
}

func (r *gormModelRepository) ListAvailable(ctx context.Context) ([]*model.Model, error) {
	var models []*model.Model
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.ModelStatusAvailable).
		Order("model_id").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
