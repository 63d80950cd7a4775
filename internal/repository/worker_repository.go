package repository

import (
	"context"

	"gorm.io/gorm"

	"crm/internal/model"
)

// WorkerRepository defines worker persistence operations.
type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]model.Worker, error)
}

type workerRepository struct {
	db *gorm.DB
}

// NewWorkerRepository creates a new worker repository.
func NewWorkerRepository(db *gorm.DB) WorkerRepository {
	return &workerRepository{db: db}
}

func (r *workerRepository) Create(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *workerRepository) Update(ctx context.Context, worker *model.Worker) error {
	return updateByID[model.Worker](ctx, r.db, worker.ID, map[string]any{
		"name": worker.Name,
		"role": worker.Role,
	})
}

// Delete removes the worker. Attendance and production rows go with it,
// deals keep their row with worker_id set to NULL.
func (r *workerRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Worker](ctx, r.db, id)
}

func (r *workerRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists[model.Worker](ctx, r.db, id)
}

func (r *workerRepository) List(ctx context.Context) ([]model.Worker, error) {
	return listNewestFirst[model.Worker](ctx, r.db)
}
