package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"crm/internal/model"
)

func ptr(v uint) *uint { return &v }

func fixture() *model.Snapshot {
	day := model.NewDate(2024, time.May, 6)
	snap := model.EmptySnapshot()
	snap.Clients = []model.Client{{ID: 2, Name: "Globex"}, {ID: 1, Name: "Acme"}}
	snap.Workers = []model.Worker{{ID: 11, Name: "Ann", Role: "Painter"}, {ID: 10, Name: "Bob", Role: "Welder"}}
	snap.Deals = []model.Deal{
		{ID: 3, ClientID: 1, WorkerID: ptr(10), OrderName: "Gate", Amount: decimal.NewFromInt(1000), Status: model.DealStatusWon},
		{ID: 2, ClientID: 1, WorkerID: ptr(10), OrderName: "Fence", Amount: decimal.NewFromInt(500), Status: model.DealStatusNew},
		{ID: 1, ClientID: 2, OrderName: "Rail", Amount: decimal.NewFromInt(200), Status: model.DealStatusLost},
	}
	snap.Attendance = []model.Attendance{
		{ID: 2, WorkerID: 11, WorkDate: day, Status: model.AttendanceSick, OvertimeHours: decimal.Zero},
		{ID: 1, WorkerID: 10, WorkDate: day, Status: model.AttendancePresent, OvertimeHours: decimal.RequireFromString("1.5")},
	}
	snap.Productions = []model.Production{
		{ID: 2, WorkerID: 10, ProductName: "Hinge", Quantity: 30, ProducedDate: day},
		{ID: 1, WorkerID: 11, ProductName: "Bolt", Quantity: 12, ProducedDate: day},
	}
	return snap
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture())

	assert.Equal(t, 2, s.Clients)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, 3, s.TotalDeals)
	assert.Equal(t, 1, s.ActiveDeals)
	assert.Equal(t, 1, s.DoneDeals)
	assert.Equal(t, 1, s.LostDeals)
	assert.True(t, decimal.NewFromInt(1000).Equal(s.RevenueDone), s.RevenueDone.String())
	assert.True(t, decimal.NewFromInt(500).Equal(s.Pipeline), s.Pipeline.String())
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(model.EmptySnapshot())
	assert.Zero(t, s.TotalDeals)
	assert.True(t, s.Pipeline.IsZero())
	assert.True(t, s.RevenueDone.IsZero())
}

func TestWorkerPerformance(t *testing.T) {
	rows := WorkerPerformance(fixture())

	require.Len(t, rows, 2)
	assert.Equal(t, "Ann", rows[0].Name)
	assert.Zero(t, rows[0].Deals)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Equal(t, 2, rows[1].Deals)
	assert.Equal(t, 1, rows[1].Won)
	assert.True(t, decimal.NewFromInt(1000).Equal(rows[1].Revenue))
}

func TestDailyProductionAndRollup(t *testing.T) {
	snap := fixture()
	assert.Equal(t, 42, DailyProduction(snap))

	rollup := AttendanceRollup(snap)
	assert.Equal(t, 1, rollup.Present)
	assert.Equal(t, 1, rollup.Sick)
	assert.Zero(t, rollup.Absent)
	assert.True(t, decimal.RequireFromString("1.5").Equal(rollup.OvertimeHours))

	assert.Equal(t, 2, DealCountForClient(snap, 1))
	assert.Zero(t, DealCountForClient(snap, 99))
}

func TestBuild(t *testing.T) {
	day := model.NewDate(2024, time.May, 6)
	r := Build(fixture(), model.SnapshotFilter{ProductionDate: day})

	assert.Equal(t, day, r.Production.Date)
	assert.Equal(t, 42, r.Production.Quantity)
	assert.Len(t, r.Workers, 2)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, fixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetClients, SheetWorkers, SheetDeals, SheetAttendance, SheetProduction, SheetSummary}, f.GetSheetList())

	deals, err := f.GetRows(SheetDeals)
	require.NoError(t, err)
	require.Len(t, deals, 4)
	assert.Equal(t, []string{"ID", "Client", "Worker", "Order", "Details", "Amount", "Status"}, deals[0])
	assert.Equal(t, "Acme", deals[1][1])
	assert.Equal(t, "Bob", deals[1][2])
	assert.Equal(t, "won", deals[1][6])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pipeline", "500"}, summary[8])
}
