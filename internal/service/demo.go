package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"crm/internal/model"
)

// SeedDemo fills an empty store with a few clients, workers and deals so the
// dashboard has something to show. It does nothing when clients or workers exist.
func SeedDemo(ctx context.Context, svc CRMService, today model.Date) (bool, error) {
	snap, err := svc.Snapshot(ctx, model.SnapshotFilter{})
	if err != nil {
		return false, err
	}
	if len(snap.Clients) > 0 || len(snap.Workers) > 0 {
		return false, nil
	}

	for _, cmd := range []Command{
		&SaveClient{Name: "Acme Metalworks", Contact: "Jane Cooper", Phone: "+7 495 100-20-30"},
		&SaveClient{Name: "Northwind Builders", Contact: "Oleg Petrov", Phone: "+7 812 200-30-40"},
		&SaveWorker{Name: "Boris Smirnov", Role: "Welder"},
		&SaveWorker{Name: "Anna Volkova", Role: "Painter"},
	} {
		if err := svc.Execute(ctx, cmd); err != nil {
			return false, fmt.Errorf("seed demo: %w", err)
		}
	}

	snap, err = svc.Snapshot(ctx, model.SnapshotFilter{})
	if err != nil {
		return false, err
	}
	// snapshots are newest first
	acme, northwind := snap.Clients[1].ID, snap.Clients[0].ID
	boris, anna := snap.Workers[1].ID, snap.Workers[0].ID

	for _, cmd := range []Command{
		&SaveDeal{ClientID: acme, WorkerID: &boris, OrderName: "Garden gate", Amount: decimal.NewFromInt(45000), Status: model.DealStatusWon},
		&SaveDeal{ClientID: acme, WorkerID: &anna, OrderName: "Railings, 12 m", Amount: decimal.NewFromInt(78000), Status: model.DealStatusInProgress},
		&SaveDeal{ClientID: northwind, OrderName: "Stair frame", Details: "Quote requested", Amount: decimal.NewFromInt(120000), Status: model.DealStatusNew},
		&RecordAttendance{WorkerID: boris, WorkDate: today, Status: model.AttendancePresent, OvertimeHours: decimal.NewFromInt(2)},
		&RecordAttendance{WorkerID: anna, WorkDate: today, Status: model.AttendancePresent},
		&RecordProduction{WorkerID: boris, ProductName: "Hinge", Quantity: 40, ProducedDate: today},
		&RecordProduction{WorkerID: anna, ProductName: "Gate panel", Quantity: 6, ProducedDate: today},
	} {
		if err := svc.Execute(ctx, cmd); err != nil {
			return false, fmt.Errorf("seed demo: %w", err)
		}
	}
	return true, nil
}
