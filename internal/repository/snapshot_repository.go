package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"crm/internal/model"
)

// SnapshotRepository reads every collection at once.
type SnapshotRepository interface {
	Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error)
}

type snapshotRepository struct {
	clients     ClientRepository
	workers     WorkerRepository
	deals       DealRepository
	attendance  AttendanceRepository
	productions ProductionRepository
}

// NewSnapshotRepository creates a snapshot reader over db.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{
		clients:     NewClientRepository(db),
		workers:     NewWorkerRepository(db),
		deals:       NewDealRepository(db),
		attendance:  NewAttendanceRepository(db),
		productions: NewProductionRepository(db),
	}
}

// Snapshot runs one query per collection. The reads are not isolated from
// concurrent writers.
func (r *snapshotRepository) Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error) {
	snap := model.EmptySnapshot()
	var err error

	if snap.Clients, err = r.clients.List(ctx); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	if snap.Workers, err = r.workers.List(ctx); err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	if snap.Deals, err = r.deals.List(ctx); err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	if snap.Attendance, err = r.attendance.List(ctx, filter.AttendanceDate); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	if snap.Productions, err = r.productions.List(ctx, filter.ProductionDate); err != nil {
		return nil, fmt.Errorf("list productions: %w", err)
	}
	return snap, nil
}
