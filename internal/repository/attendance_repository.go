package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"crm/internal/model"
)

// AttendanceRepository defines attendance persistence operations.
type AttendanceRepository interface {
	Upsert(ctx context.Context, attendance *model.Attendance) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, day model.Date) ([]model.Attendance, error)
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert inserts the row or, when the worker already has one for that day,
// replaces its status and overtime.
func (r *attendanceRepository) Upsert(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).
		Omit("Worker").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "worker_id"}, {Name: "work_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "overtime_hours"}),
		}).
		Create(attendance).Error
}

func (r *attendanceRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Attendance](ctx, r.db, id)
}

// List returns attendance newest first, limited to day unless it is zero.
func (r *attendanceRepository) List(ctx context.Context, day model.Date) ([]model.Attendance, error) {
	return listNewestFirst[model.Attendance](ctx, r.db, onDate("work_date", day))
}

func onDate(column string, day model.Date) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if day.IsZero() {
			return db
		}
		return db.Where(column+" = ?", day)
	}
}
