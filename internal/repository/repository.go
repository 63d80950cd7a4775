// Package repository holds the GORM-backed persistence for every CRM entity.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Set groups the repositories built on one database handle.
type Set struct {
	Logins      LoginRepository
	Clients     ClientRepository
	Workers     WorkerRepository
	Deals       DealRepository
	Attendance  AttendanceRepository
	Productions ProductionRepository
	Snapshots   SnapshotRepository
}

// NewSet builds every repository over db.
func NewSet(db *gorm.DB) *Set {
	return &Set{
		Logins:      NewLoginRepository(db),
		Clients:     NewClientRepository(db),
		Workers:     NewWorkerRepository(db),
		Deals:       NewDealRepository(db),
		Attendance:  NewAttendanceRepository(db),
		Productions: NewProductionRepository(db),
		Snapshots:   NewSnapshotRepository(db),
	}
}

// newestFirst is the ordering of every list the API returns.
const newestFirst = "id DESC"

func exists[T any](ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Delete(new(T), id).Error
}

func updateByID[T any](ctx context.Context, db *gorm.DB, id uint, values map[string]any) error {
	return db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values).Error
}

func listNewestFirst[T any](ctx context.Context, db *gorm.DB, scopes ...func(*gorm.DB) *gorm.DB) ([]T, error) {
	items := []T{}
	if err := db.WithContext(ctx).Scopes(scopes...).Order(newestFirst).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
