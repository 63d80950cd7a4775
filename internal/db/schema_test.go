package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"crm/internal/auth"
	"crm/internal/db"
	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/testutil"
)

func TestEnsureSchema_CreatesTablesIdempotently(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)

	require.NoError(t, db.EnsureSchema(ctx, conn))
	require.NoError(t, db.EnsureSchema(ctx, conn))

	for _, table := range []string{"login", "clients", "workers", "deals", "attendance", "productions"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasColumn(&model.Deal{}, "order_name"))
	assert.True(t, conn.Migrator().HasColumn(&model.Deal{}, "details"))
}

func TestDropAll(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewSchemaDB(t)

	require.NoError(t, db.DropAll(ctx, conn))
	for _, table := range db.Tables {
		assert.False(t, conn.Migrator().HasTable(table))
	}
	require.NoError(t, db.EnsureSchema(ctx, conn))
}

func TestEnsureSchema_AddsMissingDealColumns(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)

	require.NoError(t, conn.Exec("CREATE TABLE deals (id integer PRIMARY KEY AUTOINCREMENT, client_id integer NOT NULL, worker_id integer, amount decimal(12,2) NOT NULL DEFAULT 0, status varchar(20) NOT NULL DEFAULT 'new', created_at datetime)").Error)

	require.NoError(t, db.EnsureSchema(ctx, conn))

	assert.True(t, conn.Migrator().HasColumn(&model.Deal{}, "order_name"))
	assert.True(t, conn.Migrator().HasColumn(&model.Deal{}, "details"))
}

func TestSeedLogins(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewSchemaDB(t)

	seeded, err := db.SeedLogins(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)

	seeded, err = db.SeedLogins(ctx, conn)
	require.NoError(t, err)
	assert.Zero(t, seeded)

	var admin model.Login
	require.NoError(t, conn.Where("login = ?", "admin").First(&admin).Error)
	assert.Equal(t, "Administrator", admin.User)
	assert.True(t, auth.IsHashed(admin.Password))
	needsRehash, err := auth.VerifyPassword(admin.Password, "admin")
	require.NoError(t, err)
	assert.False(t, needsRehash)
}

func TestBootstrapper_EnsureRunsOnce(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	b := db.NewBootstrapper(conn, nil)

	require.NoError(t, b.Ensure(ctx))
	require.NoError(t, conn.Where("login = ?", "user1").Delete(&model.Login{}).Error)
	require.NoError(t, b.Ensure(ctx))

	var count int64
	require.NoError(t, conn.Model(&model.Login{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestBootstrapper_FailureIsRetried(t *testing.T) {
	ctx := context.Background()
	conn := testutil.NewDB(t)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	b := db.NewBootstrapper(conn, nil)
	for i := 0; i < 2; i++ {
		err := b.Ensure(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrDatabaseUnavailable)
	}
}

func TestOpen_SQLiteEnablesForeignKeys(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.EnsureSchema(ctx, conn))

	client := &model.Client{Name: "Acme", Contact: "Jane", Phone: "1"}
	worker := &model.Worker{Name: "Bob", Role: "Welder"}
	require.NoError(t, conn.Create(client).Error)
	require.NoError(t, conn.Create(worker).Error)
	require.NoError(t, conn.Omit("Client", "Worker").Create(&model.Deal{ClientID: client.ID, OrderName: "Gate", Amount: decimal.NewFromInt(10), Status: model.DealStatusNew}).Error)
	other := &model.Client{Name: "Globex", Contact: "Hank", Phone: "2"}
	require.NoError(t, conn.Create(other).Error)
	require.NoError(t, conn.Omit("Client", "Worker").Create(&model.Deal{ClientID: other.ID, WorkerID: &worker.ID, OrderName: "Rail", Amount: decimal.NewFromInt(20), Status: model.DealStatusNew}).Error)

	require.NoError(t, conn.Delete(&model.Client{}, client.ID).Error)
	require.NoError(t, conn.Delete(&model.Worker{}, worker.ID).Error)

	var deals []model.Deal
	require.NoError(t, conn.Find(&deals).Error)
	require.Len(t, deals, 1)
	assert.Equal(t, other.ID, deals[0].ClientID)
	assert.Nil(t, deals[0].WorkerID)
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	_, err := db.Open(db.Config{DSN: "x"})
	assert.ErrorIs(t, err, db.ErrMissingDriver)

	_, err = db.Open(db.Config{Driver: "oracle", DSN: "x"})
	assert.ErrorIs(t, err, db.ErrUnsupportedDriver)

	_, err = db.Open(db.Config{Driver: "sqlite"})
	assert.ErrorIs(t, err, db.ErrMissingDSN)
}
