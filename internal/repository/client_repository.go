package repository

import (
	"context"

	"gorm.io/gorm"

	"crm/internal/model"
)

// ClientRepository defines client persistence operations.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]model.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

// Update overwrites the editable fields of the client with client.ID.
// A missing id updates nothing.
func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return updateByID[model.Client](ctx, r.db, client.ID, map[string]any{
		"name":    client.Name,
		"contact": client.Contact,
		"phone":   client.Phone,
	})
}

// Delete removes the client; the database cascades to its deals.
func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Client](ctx, r.db, id)
}

func (r *clientRepository) Exists(ctx context.Context, id uint) (bool, error) {
	return exists[model.Client](ctx, r.db, id)
}

func (r *clientRepository) List(ctx context.Context) ([]model.Client, error) {
	return listNewestFirst[model.Client](ctx, r.db)
}
