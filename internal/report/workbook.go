package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"crm/internal/model"
)

// Sheet names of the exported workbook, in tab order.
const (
	SheetClients    = "Clients"
	SheetWorkers    = "Workers"
	SheetDeals      = "Deals"
	SheetAttendance = "Attendance"
	SheetProduction = "Production"
	SheetSummary    = "Summary"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// WriteWorkbook writes snap as an xlsx workbook with one sheet per collection and a summary sheet.
func WriteWorkbook(w io.Writer, snap *model.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := workbookSheets(snap)
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, s sheet) error {
	rows := append([][]any{s.header}, s.rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

func workbookSheets(snap *model.Snapshot) []sheet {
	clients := sheet{name: SheetClients, header: []any{"ID", "Name", "Contact", "Phone", "Deals", "Created"}}
	for _, c := range snap.Clients {
		clients.rows = append(clients.rows, []any{c.ID, c.Name, c.Contact, c.Phone, DealCountForClient(snap, c.ID), c.CreatedAt.Format("2006-01-02 15:04")})
	}

	workers := sheet{name: SheetWorkers, header: []any{"ID", "Name", "Role", "Deals", "Won", "Revenue"}}
	for _, p := range WorkerPerformance(snap) {
		workers.rows = append(workers.rows, []any{p.WorkerID, p.Name, p.Role, p.Deals, p.Won, p.Revenue.InexactFloat64()})
	}

	deals := sheet{name: SheetDeals, header: []any{"ID", "Client", "Worker", "Order", "Details", "Amount", "Status"}}
	for _, d := range snap.Deals {
		deals.rows = append(deals.rows, []any{d.ID, clientName(snap, d.ClientID), workerName(snap, d.WorkerID), d.OrderName, deref(d.Details), d.Amount.InexactFloat64(), string(d.Status)})
	}

	attendance := sheet{name: SheetAttendance, header: []any{"ID", "Worker", "Date", "Status", "Overtime"}}
	for _, a := range snap.Attendance {
		attendance.rows = append(attendance.rows, []any{a.ID, workerName(snap, &a.WorkerID), a.WorkDate.String(), string(a.Status), a.OvertimeHours.InexactFloat64()})
	}

	production := sheet{name: SheetProduction, header: []any{"ID", "Worker", "Product", "Quantity", "Date"}}
	for _, p := range snap.Productions {
		production.rows = append(production.rows, []any{p.ID, workerName(snap, &p.WorkerID), p.ProductName, p.Quantity, p.ProducedDate.String()})
	}

	s := Summarize(snap)
	summary := sheet{name: SheetSummary, header: []any{"Metric", "Value"}, rows: [][]any{
		{"Clients", s.Clients},
		{"Workers", s.Workers},
		{"Total deals", s.TotalDeals},
		{"Active deals", s.ActiveDeals},
		{"Won deals", s.DoneDeals},
		{"Lost deals", s.LostDeals},
		{"Revenue", s.RevenueDone.InexactFloat64()},
		{"Pipeline", s.Pipeline.InexactFloat64()},
		{"Produced", DailyProduction(snap)},
	}}

	return []sheet{clients, workers, deals, attendance, production, summary}
}

func clientName(snap *model.Snapshot, id uint) string {
	if c, ok := snap.ClientByID(id); ok {
		return c.Name
	}
	return ""
}

func workerName(snap *model.Snapshot, id *uint) string {
	if id == nil {
		return ""
	}
	if w, ok := snap.WorkerByID(*id); ok {
		return w.Name
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
