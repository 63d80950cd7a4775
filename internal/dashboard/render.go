package dashboard

import (
	"strconv"

	"crm/internal/model"
	"crm/internal/report"
)

// Placeholders shown when a record points at a row that no longer exists.
const (
	DeletedClient = "Deleted client"
	DeletedWorker = "Deleted worker"
)

// Badge is a status label with its CSS class.
type Badge struct {
	Label string
	Class string
}

var dealBadges = map[model.DealStatus]Badge{
	model.DealStatusNew:        {"New", "badge-new"},
	model.DealStatusInProgress: {"In progress", "badge-progress"},
	model.DealStatusWon:        {"Won", "badge-won"},
	model.DealStatusLost:       {"Lost", "badge-lost"},
}

var attendanceBadges = map[model.AttendanceStatus]Badge{
	model.AttendancePresent:  {"On shift", "badge-won"},
	model.AttendanceAbsent:   {"Absent", "badge-lost"},
	model.AttendanceSick:     {"Sick leave", "badge-progress"},
	model.AttendanceVacation: {"Vacation", "badge-new"},
}

// DealBadge returns the badge for status. Unknown values keep their raw text.
func DealBadge(status model.DealStatus) Badge {
	if b, ok := dealBadges[status]; ok {
		return b
	}
	return Badge{Label: orDash(string(status)), Class: "badge-new"}
}

// AttendanceBadge returns the badge for status. Unknown values keep their raw text.
func AttendanceBadge(status model.AttendanceStatus) Badge {
	if b, ok := attendanceBadges[status]; ok {
		return b
	}
	return Badge{Label: orDash(string(status)), Class: "badge-new"}
}

// Card is one figure on the overview or progress panel.
type Card struct {
	Value string
	Label string
}

// Option is an entry of a select box.
type Option struct {
	Value string
	Label string
}

type ClientRow struct {
	ID      uint
	Name    string
	Contact string
	Phone   string
	Deals   int
}

type WorkerRow struct {
	ID   uint
	Name string
	Role string
}

// DealRow carries display text plus the raw values the edit form needs.
type DealRow struct {
	ID         uint
	OrderName  string
	ClientName string
	WorkerName string
	Amount     string
	Status     Badge
	Created    string
	Details    string

	ClientID    uint
	WorkerID    uint
	AmountValue string
	StatusValue string
}

type AttendanceRow struct {
	ID         uint
	Date       string
	WorkerName string
	Status     Badge
	Overtime   string
}

type ProductionRow struct {
	ID         uint
	Date       string
	WorkerName string
	Product    string
	Quantity   int
}

type PerformanceRow struct {
	Name    string
	Deals   int
	Won     int
	Revenue string
}

// View is everything the dashboard template needs, already formatted.
type View struct {
	Clients     []ClientRow
	Workers     []WorkerRow
	Deals       []DealRow
	Attendance  []AttendanceRow
	Productions []ProductionRow

	Overview    []Card
	Progress    []Card
	Performance []PerformanceRow

	ClientOptions           []Option
	WorkerOptions           []Option
	DealStatusOptions       []Option
	AttendanceStatusOptions []Option

	// AttendanceDate and ProductionDate are YYYY-MM-DD values for the filter inputs.
	AttendanceDate string
	ProductionDate string
}

// Render turns snap into a View. It has no side effects.
func Render(snap *model.Snapshot, filter model.SnapshotFilter, f *Formatter) View {
	summary := report.Summarize(snap)
	v := View{
		Clients:        make([]ClientRow, 0, len(snap.Clients)),
		Workers:        make([]WorkerRow, 0, len(snap.Workers)),
		Deals:          make([]DealRow, 0, len(snap.Deals)),
		Attendance:     make([]AttendanceRow, 0, len(snap.Attendance)),
		Productions:    make([]ProductionRow, 0, len(snap.Productions)),
		AttendanceDate: filter.AttendanceDate.String(),
		ProductionDate: filter.ProductionDate.String(),
	}

	for _, c := range snap.Clients {
		v.Clients = append(v.Clients, ClientRow{
			ID:      c.ID,
			Name:    orDash(c.Name),
			Contact: orDash(c.Contact),
			Phone:   orDash(c.Phone),
			Deals:   report.DealCountForClient(snap, c.ID),
		})
		v.ClientOptions = append(v.ClientOptions, Option{Value: id(c.ID), Label: c.Name})
	}

	for _, w := range snap.Workers {
		v.Workers = append(v.Workers, WorkerRow{ID: w.ID, Name: orDash(w.Name), Role: orDash(w.Role)})
		v.WorkerOptions = append(v.WorkerOptions, Option{Value: id(w.ID), Label: w.Name})
	}

	for _, d := range snap.Deals {
		row := DealRow{
			ID:          d.ID,
			OrderName:   orDash(d.OrderName),
			ClientName:  clientName(snap, d.ClientID),
			WorkerName:  placeholder,
			Amount:      f.Money(d.Amount),
			Status:      DealBadge(d.Status),
			Created:     f.Timestamp(d.CreatedAt),
			ClientID:    d.ClientID,
			AmountValue: d.Amount.String(),
			StatusValue: string(d.Status),
		}
		if d.Details != nil {
			row.Details = *d.Details
		}
		if d.WorkerID != nil {
			row.WorkerID = *d.WorkerID
			row.WorkerName = workerName(snap, *d.WorkerID)
		}
		v.Deals = append(v.Deals, row)
	}

	for _, a := range snap.Attendance {
		v.Attendance = append(v.Attendance, AttendanceRow{
			ID:         a.ID,
			Date:       f.Date(a.WorkDate),
			WorkerName: workerName(snap, a.WorkerID),
			Status:     AttendanceBadge(a.Status),
			Overtime:   f.Hours(a.OvertimeHours),
		})
	}

	for _, p := range snap.Productions {
		v.Productions = append(v.Productions, ProductionRow{
			ID:         p.ID,
			Date:       f.Date(p.ProducedDate),
			WorkerName: workerName(snap, p.WorkerID),
			Product:    orDash(p.ProductName),
			Quantity:   p.Quantity,
		})
	}

	v.Overview = []Card{
		{Value: f.Count(summary.Clients), Label: "Clients"},
		{Value: f.Count(summary.Workers), Label: "Workers"},
		{Value: f.Count(summary.TotalDeals), Label: "Total deals"},
		{Value: f.Money(summary.Pipeline), Label: "Current pipeline"},
	}
	v.Progress = []Card{
		{Value: f.Count(summary.DoneDeals), Label: "Deals won"},
		{Value: f.Count(summary.ActiveDeals), Label: "Deals in progress"},
		{Value: f.Count(summary.LostDeals), Label: "Deals lost"},
		{Value: f.Money(summary.RevenueDone), Label: "Revenue from won deals"},
		{Value: f.Count(report.DailyProduction(snap)), Label: "Items produced on " + f.Date(filter.ProductionDate)},
	}

	for _, p := range report.WorkerPerformance(snap) {
		v.Performance = append(v.Performance, PerformanceRow{
			Name:    orDash(p.Name),
			Deals:   p.Deals,
			Won:     p.Won,
			Revenue: f.Money(p.Revenue),
		})
	}

	for _, s := range model.DealStatuses {
		v.DealStatusOptions = append(v.DealStatusOptions, Option{Value: string(s), Label: dealBadges[s].Label})
	}
	for _, s := range model.AttendanceStatuses {
		v.AttendanceStatusOptions = append(v.AttendanceStatusOptions, Option{Value: string(s), Label: attendanceBadges[s].Label})
	}
	return v
}

func clientName(snap *model.Snapshot, clientID uint) string {
	if c, ok := snap.ClientByID(clientID); ok {
		return orDash(c.Name)
	}
	return DeletedClient
}

func workerName(snap *model.Snapshot, workerID uint) string {
	if w, ok := snap.WorkerByID(workerID); ok {
		return orDash(w.Name)
	}
	return DeletedWorker
}

func id(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
