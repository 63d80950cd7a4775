package repository

import (
	"context"

	"gorm.io/gorm"

	"crm/internal/model"
)

// DealRepository defines deal persistence operations.
type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	Update(ctx context.Context, deal *model.Deal, keepWorker bool) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]model.Deal, error)
}

type dealRepository struct {
	db *gorm.DB
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Omit("Client", "Worker").Create(deal).Error
}

// Update rewrites every editable column, including a NULL worker_id or details.
// With keepWorker the stored worker_id is left as it is.
func (r *dealRepository) Update(ctx context.Context, deal *model.Deal, keepWorker bool) error {
	values := map[string]any{
		"client_id":  deal.ClientID,
		"worker_id":  deal.WorkerID,
		"order_name": deal.OrderName,
		"details":    deal.Details,
		"amount":     deal.Amount,
		"status":     deal.Status,
	}
	if keepWorker {
		delete(values, "worker_id")
	}
	return updateByID[model.Deal](ctx, r.db, deal.ID, values)
}

func (r *dealRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Deal](ctx, r.db, id)
}

func (r *dealRepository) List(ctx context.Context) ([]model.Deal, error) {
	return listNewestFirst[model.Deal](ctx, r.db)
}
