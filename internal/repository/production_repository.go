package repository

import (
	"context"

	"gorm.io/gorm"

	"crm/internal/model"
)

// ProductionRepository defines production persistence operations.
type ProductionRepository interface {
	Create(ctx context.Context, production *model.Production) error
	Update(ctx context.Context, production *model.Production) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, day model.Date) ([]model.Production, error)
}

type productionRepository struct {
	db *gorm.DB
}

// NewProductionRepository creates a new production repository.
func NewProductionRepository(db *gorm.DB) ProductionRepository {
	return &productionRepository{db: db}
}

func (r *productionRepository) Create(ctx context.Context, production *model.Production) error {
	return r.db.WithContext(ctx).Omit("Worker").Create(production).Error
}

func (r *productionRepository) Update(ctx context.Context, production *model.Production) error {
	return updateByID[model.Production](ctx, r.db, production.ID, map[string]any{
		"worker_id":     production.WorkerID,
		"product_name":  production.ProductName,
		"quantity":      production.Quantity,
		"produced_date": production.ProducedDate,
	})
}

func (r *productionRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Production](ctx, r.db, id)
}

// List returns productions newest first, limited to day unless it is zero.
func (r *productionRepository) List(ctx context.Context, day model.Date) ([]model.Production, error) {
	return listNewestFirst[model.Production](ctx, r.db, onDate("produced_date", day))
}
