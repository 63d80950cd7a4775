package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"crm/internal/model"
)

// LoginRepository defines persistence operations for dashboard users.
type LoginRepository interface {
	FindByLogin(ctx context.Context, login string) (*model.Login, error)
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type loginRepository struct {
	db *gorm.DB
}

// NewLoginRepository builds a GORM-backed repository.
func NewLoginRepository(db *gorm.DB) LoginRepository {
	return &loginRepository{db: db}
}

func (r *loginRepository) FindByLogin(ctx context.Context, login string) (*model.Login, error) {
	var row model.Login
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *loginRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Login{}).Where("id = ?", id).Update("last_login", at).Error
}

func (r *loginRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return r.db.WithContext(ctx).Model(&model.Login{}).Where("id = ?", id).Update("password", hash).Error
}
