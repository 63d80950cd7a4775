package db

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"crm/internal/auth"
	apperrors "crm/internal/errors"
	"crm/internal/model"
)

// Tables lists the schema in creation order; referenced tables come first.
var Tables = []any{
	&model.Login{},
	&model.Client{},
	&model.Worker{},
	&model.Deal{},
	&model.Attendance{},
	&model.Production{},
}

// DefaultLogins are inserted when the login table is empty.
var DefaultLogins = []struct {
	User, Login, Password string
}{
	{"Ivan Ivanov", "user1", "user1"},
	{"Maria Sidorova", "user2", "user2"},
	{"Administrator", "admin", "admin"},
}

// EnsureSchema creates missing tables and applies additive column migrations.
// It is idempotent and safe to run on every start.
func EnsureSchema(ctx context.Context, db *gorm.DB) error {
	m := db.WithContext(ctx).Migrator()
	for _, table := range Tables {
		if m.HasTable(table) {
			continue
		}
		if err := m.CreateTable(table); err != nil {
			return fmt.Errorf("create table %T: %w", table, err)
		}
	}

	deal := &model.Deal{}
	for _, field := range []string{"OrderName", "Details"} {
		if m.HasColumn(deal, field) {
			continue
		}
		if err := m.AddColumn(deal, field); err != nil {
			return fmt.Errorf("add deals.%s: %w", field, err)
		}
	}

	nullable, err := columnNullable(db.WithContext(ctx), deal, "worker_id")
	if err != nil {
		return err
	}
	if !nullable {
		if err := makeWorkerNullable(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("make deals.worker_id nullable: %w", err)
		}
	}
	return nil
}

// DropAll removes every table, referencing tables first.
func DropAll(ctx context.Context, db *gorm.DB) error {
	m := db.WithContext(ctx).Migrator()
	for i := len(Tables) - 1; i >= 0; i-- {
		if err := m.DropTable(Tables[i]); err != nil {
			return fmt.Errorf("drop table %T: %w", Tables[i], err)
		}
	}
	return nil
}

func columnNullable(db *gorm.DB, table any, column string) (bool, error) {
	columns, err := db.Migrator().ColumnTypes(table)
	if err != nil {
		return false, fmt.Errorf("inspect columns: %w", err)
	}
	for _, c := range columns {
		if c.Name() != column {
			continue
		}
		if nullable, ok := c.Nullable(); ok {
			return nullable, nil
		}
		return true, nil
	}
	return true, nil
}

// makeWorkerNullable upgrades deals tables created before deals could be unassigned.
// Those tables were created with an INT column, so MySQL keeps that type to stay
// compatible with the workers foreign key.
func makeWorkerNullable(db *gorm.DB) error {
	if db.Dialector.Name() == DriverMySQL {
		return db.Exec("ALTER TABLE deals MODIFY worker_id INT NULL").Error
	}
	return db.Migrator().AlterColumn(&model.Deal{}, "WorkerID")
}

// SeedLogins inserts the default users, with hashed passwords, when the login table is empty.
func SeedLogins(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Login{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count logins: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	rows := make([]model.Login, 0, len(DefaultLogins))
	for _, seed := range DefaultLogins {
		hashed, err := auth.HashPassword(seed.Password)
		if err != nil {
			return 0, err
		}
		rows = append(rows, model.Login{User: seed.User, Login: seed.Login, Password: hashed})
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("seed logins: %w", err)
	}
	return len(rows), nil
}

// Bootstrapper makes sure the schema exists before the first request is served.
// A failed attempt is returned to that caller; the next caller tries again.
type Bootstrapper struct {
	db     *gorm.DB
	logger *zap.Logger

	mu   sync.Mutex
	done bool
}

// NewBootstrapper creates a Bootstrapper for db.
func NewBootstrapper(db *gorm.DB, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{db: db, logger: logger}
}

// Ensure pings the database, then creates the schema and seeds logins once.
func (b *Bootstrapper) Ensure(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}

	sqlDB, err := b.db.DB()
	if err != nil {
		return b.fail("handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return b.fail("ping", err)
	}
	if err := EnsureSchema(ctx, b.db); err != nil {
		return b.fail("schema", err)
	}
	seeded, err := SeedLogins(ctx, b.db)
	if err != nil {
		return b.fail("seed", err)
	}
	if seeded > 0 {
		b.logger.Info("seeded default logins", zap.Int("count", seeded))
	}

	b.done = true
	return nil
}

func (b *Bootstrapper) fail(step string, err error) error {
	b.logger.Error("database bootstrap failed", zap.String("step", step), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", apperrors.ErrDatabaseUnavailable, step, err)
}
