package handler

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/service"
)

// Numeric fields are json.Number so that both 5 and "5" are accepted, and so
// the same structs bind from HTML forms.

// ClientRequest is the body of a clients save.
type ClientRequest struct {
	ClientID json.Number `json:"clientId" form:"clientId" validate:"omitempty,numeric"`
	Name     string      `json:"name" form:"name" validate:"required,max=120"`
	Contact  string      `json:"contact" form:"contact" validate:"required,max=120"`
	Phone    string      `json:"phone" form:"phone" validate:"required,max=40"`
}

// WorkerRequest is the body of a workers save.
type WorkerRequest struct {
	WorkerID json.Number `json:"workerId" form:"workerId" validate:"omitempty,numeric"`
	Name     string      `json:"name" form:"name" validate:"required,max=120"`
	Role     string      `json:"role" form:"role" validate:"required,max=120"`
}

// DealRequest is the body of a deals save.
type DealRequest struct {
	DealID    json.Number `json:"dealId" form:"dealId" validate:"omitempty,numeric"`
	ClientID  json.Number `json:"clientId" form:"clientId" validate:"required,numeric"`
	WorkerID  json.Number `json:"workerId" form:"workerId" validate:"omitempty,numeric"`
	OrderName string      `json:"orderName" form:"orderName" validate:"required,max=160"`
	Details   string      `json:"details" form:"details"`
	Amount    json.Number `json:"amount" form:"amount" validate:"omitempty,numeric"`
	Status    string      `json:"status" form:"status" validate:"omitempty,oneof=new in_progress won lost"`

	// workerSet records whether the body carried workerId at all, null included.
	workerSet bool
}

// UnmarshalJSON decodes the deal and notes whether workerId was sent.
func (r *DealRequest) UnmarshalJSON(data []byte) error {
	type plain DealRequest
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	_, r.workerSet = fields["workerId"]
	return nil
}

// noteFormFields is the form counterpart of UnmarshalJSON.
func (r *DealRequest) noteFormFields(form url.Values) {
	if _, ok := form["workerId"]; ok {
		r.workerSet = true
	}
}

// AttendanceRequest is the body of an attendance save.
type AttendanceRequest struct {
	WorkerID      json.Number `json:"workerId" form:"workerId" validate:"required,numeric"`
	WorkDate      string      `json:"workDate" form:"workDate" validate:"required,datetime=2006-01-02"`
	Status        string      `json:"status" form:"status" validate:"omitempty,oneof=present absent sick vacation"`
	OvertimeHours json.Number `json:"overtimeHours" form:"overtimeHours" validate:"omitempty,numeric"`
}

// ProductionRequest is the body of a productions save.
type ProductionRequest struct {
	ProductionID json.Number `json:"productionId" form:"productionId" validate:"omitempty,numeric"`
	WorkerID     json.Number `json:"workerId" form:"workerId" validate:"required,numeric"`
	ProductName  string      `json:"productName" form:"productName" validate:"required,max=140"`
	Quantity     json.Number `json:"quantity" form:"quantity" validate:"required,numeric"`
	ProducedDate string      `json:"producedDate" form:"producedDate" validate:"required,datetime=2006-01-02"`
}

// commandRequest is a decoded request body that converts into one command.
type commandRequest interface {
	toCommand() (service.Command, error)
	invalidMessage() string
}

func newCommandRequest(kind model.EntityKind) (commandRequest, error) {
	switch kind {
	case model.EntityClients:
		return &ClientRequest{}, nil
	case model.EntityWorkers:
		return &WorkerRequest{}, nil
	case model.EntityDeals:
		return &DealRequest{}, nil
	case model.EntityAttendance:
		return &AttendanceRequest{}, nil
	case model.EntityProductions:
		return &ProductionRequest{}, nil
	default:
		return nil, apperrors.ErrUnknownEntity
	}
}

// toCommand validates req with validate and converts it. Any failure is
// reported with the request's own message.
func toCommand(req commandRequest, validate func(i interface{}) error) (service.Command, error) {
	if err := validate(req); err != nil {
		return nil, apperrors.Validation(req.invalidMessage())
	}
	cmd, err := req.toCommand()
	if err != nil {
		return nil, apperrors.Validation(req.invalidMessage())
	}
	return cmd, nil
}

func (r *ClientRequest) invalidMessage() string     { return service.MessageInvalidClient }
func (r *WorkerRequest) invalidMessage() string     { return service.MessageInvalidWorker }
func (r *DealRequest) invalidMessage() string       { return service.MessageInvalidDeal }
func (r *AttendanceRequest) invalidMessage() string { return service.MessageInvalidAttendance }
func (r *ProductionRequest) invalidMessage() string { return service.MessageInvalidProduction }

func (r *ClientRequest) toCommand() (service.Command, error) {
	id, err := parseID(r.ClientID)
	if err != nil {
		return nil, err
	}
	return &service.SaveClient{ID: id, Name: r.Name, Contact: r.Contact, Phone: r.Phone}, nil
}

func (r *WorkerRequest) toCommand() (service.Command, error) {
	id, err := parseID(r.WorkerID)
	if err != nil {
		return nil, err
	}
	return &service.SaveWorker{ID: id, Name: r.Name, Role: r.Role}, nil
}

func (r *DealRequest) toCommand() (service.Command, error) {
	id, err := parseID(r.DealID)
	if err != nil {
		return nil, err
	}
	clientID, err := parseID(r.ClientID)
	if err != nil {
		return nil, err
	}
	workerID, err := parseID(r.WorkerID)
	if err != nil {
		return nil, err
	}
	amount, err := parseDecimal(r.Amount)
	if err != nil {
		return nil, err
	}
	cmd := &service.SaveDeal{
		ID:        id,
		ClientID:  clientID,
		OrderName: r.OrderName,
		Details:   r.Details,
		Amount:    amount,
		Status:    model.DealStatus(r.Status),
	}
	// an edit that does not mention the worker keeps the assignment
	cmd.KeepWorker = id > 0 && !r.workerSet
	if workerID > 0 {
		cmd.WorkerID = &workerID
	}
	return cmd, nil
}

func (r *AttendanceRequest) toCommand() (service.Command, error) {
	workerID, err := parseID(r.WorkerID)
	if err != nil {
		return nil, err
	}
	day, err := model.ParseDate(r.WorkDate)
	if err != nil {
		return nil, err
	}
	overtime, err := parseDecimal(r.OvertimeHours)
	if err != nil {
		return nil, err
	}
	return &service.RecordAttendance{
		WorkerID:      workerID,
		WorkDate:      day,
		Status:        model.AttendanceStatus(r.Status),
		OvertimeHours: overtime,
	}, nil
}

func (r *ProductionRequest) toCommand() (service.Command, error) {
	id, err := parseID(r.ProductionID)
	if err != nil {
		return nil, err
	}
	workerID, err := parseID(r.WorkerID)
	if err != nil {
		return nil, err
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(r.Quantity.String()))
	if err != nil {
		return nil, err
	}
	day, err := model.ParseDate(r.ProducedDate)
	if err != nil {
		return nil, err
	}
	return &service.RecordProduction{
		ID:           id,
		WorkerID:     workerID,
		ProductName:  r.ProductName,
		Quantity:     quantity,
		ProducedDate: day,
	}, nil
}

// parseID reads an optional integer id. Empty, zero and negative values all
// mean 0, so a save with such an id creates a new record.
func parseID(n json.Number) (uint, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, nil
	}
	return uint(v), nil
}

func parseDecimal(n json.Number) (decimal.Decimal, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parsePositiveID parses the id of a delete request.
func parsePositiveID(s string) (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 0)
	if err != nil || v == 0 {
		return 0, apperrors.ErrInvalidID
	}
	return uint(v), nil
}

// parseFilter reads the attendance_date and production_date query values.
func parseFilter(attendanceDate, productionDate string) (model.SnapshotFilter, error) {
	var filter model.SnapshotFilter
	var err error
	if strings.TrimSpace(attendanceDate) != "" {
		if filter.AttendanceDate, err = model.ParseDate(attendanceDate); err != nil {
			return filter, apperrors.Validation("invalid attendance_date, expected YYYY-MM-DD")
		}
	}
	if strings.TrimSpace(productionDate) != "" {
		if filter.ProductionDate, err = model.ParseDate(productionDate); err != nil {
			return filter, apperrors.Validation("invalid production_date, expected YYYY-MM-DD")
		}
	}
	return filter, nil
}
