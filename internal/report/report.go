// Package report derives dashboard figures from a snapshot. Every function is
// pure and recomputes from scratch on each call.
package report

import (
	"github.com/shopspring/decimal"

	"crm/internal/model"
)

// Summary holds the overview counters and money totals.
type Summary struct {
	Clients     int             `json:"clients"`
	Workers     int             `json:"workers"`
	TotalDeals  int             `json:"total_deals"`
	ActiveDeals int             `json:"active_deals"`
	DoneDeals   int             `json:"done_deals"`
	LostDeals   int             `json:"lost_deals"`
	RevenueDone decimal.Decimal `json:"revenue_done"`
	Pipeline    decimal.Decimal `json:"pipeline"`
}

// Summarize counts deals by stage. Revenue sums won deals, pipeline sums new and in-progress ones.
func Summarize(snap *model.Snapshot) Summary {
	s := Summary{
		Clients:     len(snap.Clients),
		Workers:     len(snap.Workers),
		TotalDeals:  len(snap.Deals),
		RevenueDone: decimal.Zero,
		Pipeline:    decimal.Zero,
	}
	for _, deal := range snap.Deals {
		switch {
		case deal.Status.Active():
			s.ActiveDeals++
			s.Pipeline = s.Pipeline.Add(deal.Amount)
		case deal.Status == model.DealStatusWon:
			s.DoneDeals++
			s.RevenueDone = s.RevenueDone.Add(deal.Amount)
		case deal.Status == model.DealStatusLost:
			s.LostDeals++
		}
	}
	return s
}

// WorkerStats is one row of the per-worker performance table.
type WorkerStats struct {
	WorkerID uint            `json:"worker_id"`
	Name     string          `json:"name"`
	Role     string          `json:"role"`
	Deals    int             `json:"deals"`
	Won      int             `json:"won"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// WorkerPerformance returns one row per worker, in snapshot order.
func WorkerPerformance(snap *model.Snapshot) []WorkerStats {
	index := make(map[uint]int, len(snap.Workers))
	rows := make([]WorkerStats, len(snap.Workers))
	for i, w := range snap.Workers {
		index[w.ID] = i
		rows[i] = WorkerStats{WorkerID: w.ID, Name: w.Name, Role: w.Role, Revenue: decimal.Zero}
	}
	for _, deal := range snap.Deals {
		if deal.WorkerID == nil {
			continue
		}
		i, ok := index[*deal.WorkerID]
		if !ok {
			continue
		}
		rows[i].Deals++
		if deal.Status == model.DealStatusWon {
			rows[i].Won++
			rows[i].Revenue = rows[i].Revenue.Add(deal.Amount)
		}
	}
	return rows
}

// DailyProduction sums the quantity of every production in the snapshot.
// With a production date filter applied this is the total for that day.
func DailyProduction(snap *model.Snapshot) int {
	total := 0
	for _, p := range snap.Productions {
		total += p.Quantity
	}
	return total
}

// AttendanceSummary counts attendance rows per status.
type AttendanceSummary struct {
	Present       int             `json:"present"`
	Absent        int             `json:"absent"`
	Sick          int             `json:"sick"`
	Vacation      int             `json:"vacation"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

// AttendanceRollup counts the snapshot's attendance by status and totals overtime.
func AttendanceRollup(snap *model.Snapshot) AttendanceSummary {
	s := AttendanceSummary{OvertimeHours: decimal.Zero}
	for _, a := range snap.Attendance {
		switch a.Status {
		case model.AttendancePresent:
			s.Present++
		case model.AttendanceAbsent:
			s.Absent++
		case model.AttendanceSick:
			s.Sick++
		case model.AttendanceVacation:
			s.Vacation++
		}
		s.OvertimeHours = s.OvertimeHours.Add(a.OvertimeHours)
	}
	return s
}

// DealCountForClient counts the deals placed by client id.
func DealCountForClient(snap *model.Snapshot, id uint) int {
	n := 0
	for _, deal := range snap.Deals {
		if deal.ClientID == id {
			n++
		}
	}
	return n
}

// Report is the payload of the reporting endpoint.
type Report struct {
	Summary    Summary           `json:"summary"`
	Workers    []WorkerStats     `json:"workers"`
	Production ProductionTotal   `json:"production"`
	Attendance AttendanceSummary `json:"attendance"`
}

// ProductionTotal is the produced quantity for one day, or for all days when Date is empty.
type ProductionTotal struct {
	Date     model.Date `json:"date"`
	Quantity int        `json:"quantity"`
}

// Build assembles every figure for snap, which was read with filter.
func Build(snap *model.Snapshot, filter model.SnapshotFilter) Report {
	return Report{
		Summary:    Summarize(snap),
		Workers:    WorkerPerformance(snap),
		Production: ProductionTotal{Date: filter.ProductionDate, Quantity: DailyProduction(snap)},
		Attendance: AttendanceRollup(snap),
	}
}
