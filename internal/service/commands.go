package service

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "crm/internal/errors"
	"crm/internal/model"
)

// Command is one mutation of the CRM store. The set of commands is closed:
// only the types in this file implement it.
type Command interface {
	// Validate normalizes the command in place and reports the first problem.
	Validate() error
	command()
}

// SaveClient creates a client, or updates it when ID is set.
type SaveClient struct {
	ID      uint
	Name    string
	Contact string
	Phone   string
}

// SaveWorker creates a worker, or updates it when ID is set.
type SaveWorker struct {
	ID   uint
	Name string
	Role string
}

// SaveDeal creates a deal, or updates it when ID is set. A nil WorkerID leaves the deal unassigned.
// KeepWorker makes an update leave the stored worker untouched and ignore WorkerID.
type SaveDeal struct {
	ID         uint
	ClientID   uint
	WorkerID   *uint
	KeepWorker bool
	OrderName  string
	Details    string
	Amount     decimal.Decimal
	Status     model.DealStatus
}

// RecordAttendance stores a worker's status for a day, replacing an earlier record for the same day.
type RecordAttendance struct {
	WorkerID      uint
	WorkDate      model.Date
	Status        model.AttendanceStatus
	OvertimeHours decimal.Decimal
}

// RecordProduction creates a production batch, or updates it when ID is set.
type RecordProduction struct {
	ID           uint
	WorkerID     uint
	ProductName  string
	Quantity     int
	ProducedDate model.Date
}

// DeleteEntity removes one record of any kind.
type DeleteEntity struct {
	Kind model.EntityKind
	ID   uint
}

func (*SaveClient) command()       {}
func (*SaveWorker) command()       {}
func (*SaveDeal) command()         {}
func (*RecordAttendance) command() {}
func (*RecordProduction) command() {}
func (*DeleteEntity) command()     {}

// Validation messages, one per command kind.
const (
	MessageInvalidClient     = "fill in the client name, contact and phone"
	MessageInvalidWorker     = "fill in the worker name and role"
	MessageInvalidDeal       = "invalid deal data"
	MessageInvalidAttendance = "invalid attendance data"
	MessageInvalidProduction = "invalid production data"
)

// Column limits of deals.amount DECIMAL(12,2) and attendance.overtime_hours DECIMAL(4,2).
var (
	maxAmount   = decimal.New(1, 10)
	maxOvertime = decimal.NewFromInt(100)
)

func (c *SaveClient) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Contact = strings.TrimSpace(c.Contact)
	c.Phone = strings.TrimSpace(c.Phone)
	if c.Name == "" || c.Contact == "" || c.Phone == "" {
		return apperrors.Validation(MessageInvalidClient)
	}
	return nil
}

func (c *SaveWorker) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Role = strings.TrimSpace(c.Role)
	if c.Name == "" || c.Role == "" {
		return apperrors.Validation(MessageInvalidWorker)
	}
	return nil
}

func (c *SaveDeal) Validate() error {
	c.OrderName = strings.TrimSpace(c.OrderName)
	c.Details = strings.TrimSpace(c.Details)
	if c.KeepWorker || (c.WorkerID != nil && *c.WorkerID == 0) {
		c.WorkerID = nil
	}
	if c.Status == "" {
		c.Status = model.DealStatusNew
	}
	c.Amount = c.Amount.Round(2)
	if c.ClientID == 0 || c.OrderName == "" || c.Amount.IsNegative() || c.Amount.GreaterThanOrEqual(maxAmount) || !c.Status.Valid() {
		return apperrors.Validation(MessageInvalidDeal)
	}
	return nil
}

func (c *RecordAttendance) Validate() error {
	if c.Status == "" {
		c.Status = model.AttendancePresent
	}
	c.OvertimeHours = c.OvertimeHours.Round(2)
	if c.WorkerID == 0 || c.WorkDate.IsZero() || !c.Status.Valid() || c.OvertimeHours.IsNegative() || c.OvertimeHours.GreaterThanOrEqual(maxOvertime) {
		return apperrors.Validation(MessageInvalidAttendance)
	}
	return nil
}

func (c *RecordProduction) Validate() error {
	c.ProductName = strings.TrimSpace(c.ProductName)
	if c.WorkerID == 0 || c.ProductName == "" || c.Quantity <= 0 || c.ProducedDate.IsZero() {
		return apperrors.Validation(MessageInvalidProduction)
	}
	return nil
}

func (c *DeleteEntity) Validate() error {
	if c.ID == 0 {
		return apperrors.ErrInvalidID
	}
	if _, err := model.ParseEntityKind(string(c.Kind)); err != nil {
		return apperrors.ErrUnknownEntity
	}
	return nil
}
