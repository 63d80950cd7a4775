package service

import (
	"context"
	"fmt"

	apperrors "crm/internal/errors"
	"crm/internal/model"
	"crm/internal/repository"
)

// CRMService executes commands against the store and reads snapshots of it.
type CRMService interface {
	Execute(ctx context.Context, cmd Command) error
	Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error)
}

type crmService struct {
	repos *repository.Set
}

// NewCRMService creates a new CRM service.
func NewCRMService(repos *repository.Set) CRMService {
	return &crmService{repos: repos}
}

// Snapshot returns every collection, newest first.
func (s *crmService) Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error) {
	snap, err := s.repos.Snapshots.Snapshot(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snap, nil
}

// Execute validates cmd and applies it. Updating or deleting an id that does
// not exist succeeds without changing anything.
func (s *crmService) Execute(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return apperrors.ErrUnknownEntity
	}
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch c := cmd.(type) {
	case *SaveClient:
		return s.saveClient(ctx, c)
	case *SaveWorker:
		return s.saveWorker(ctx, c)
	case *SaveDeal:
		return s.saveDeal(ctx, c)
	case *RecordAttendance:
		return s.recordAttendance(ctx, c)
	case *RecordProduction:
		return s.recordProduction(ctx, c)
	case *DeleteEntity:
		return s.delete(ctx, c)
	default:
		return apperrors.ErrUnknownEntity
	}
}

func (s *crmService) saveClient(ctx context.Context, c *SaveClient) error {
	client := &model.Client{ID: c.ID, Name: c.Name, Contact: c.Contact, Phone: c.Phone}
	if c.ID > 0 {
		return wrap("update client", s.repos.Clients.Update(ctx, client))
	}
	return wrap("create client", s.repos.Clients.Create(ctx, client))
}

func (s *crmService) saveWorker(ctx context.Context, c *SaveWorker) error {
	worker := &model.Worker{ID: c.ID, Name: c.Name, Role: c.Role}
	if c.ID > 0 {
		return wrap("update worker", s.repos.Workers.Update(ctx, worker))
	}
	return wrap("create worker", s.repos.Workers.Create(ctx, worker))
}

func (s *crmService) saveDeal(ctx context.Context, c *SaveDeal) error {
	if err := s.requireClient(ctx, c.ClientID); err != nil {
		return err
	}
	if c.WorkerID != nil {
		if err := s.requireWorker(ctx, *c.WorkerID); err != nil {
			return err
		}
	}

	deal := &model.Deal{
		ID:        c.ID,
		ClientID:  c.ClientID,
		WorkerID:  c.WorkerID,
		OrderName: c.OrderName,
		Amount:    c.Amount,
		Status:    c.Status,
	}
	if c.Details != "" {
		details := c.Details
		deal.Details = &details
	}
	if c.ID > 0 {
		return wrap("update deal", s.repos.Deals.Update(ctx, deal, c.KeepWorker))
	}
	return wrap("create deal", s.repos.Deals.Create(ctx, deal))
}

func (s *crmService) recordAttendance(ctx context.Context, c *RecordAttendance) error {
	if err := s.requireWorker(ctx, c.WorkerID); err != nil {
		return err
	}
	return wrap("record attendance", s.repos.Attendance.Upsert(ctx, &model.Attendance{
		WorkerID:      c.WorkerID,
		WorkDate:      c.WorkDate,
		Status:        c.Status,
		OvertimeHours: c.OvertimeHours,
	}))
}

func (s *crmService) recordProduction(ctx context.Context, c *RecordProduction) error {
	if err := s.requireWorker(ctx, c.WorkerID); err != nil {
		return err
	}
	production := &model.Production{
		ID:           c.ID,
		WorkerID:     c.WorkerID,
		ProductName:  c.ProductName,
		Quantity:     c.Quantity,
		ProducedDate: c.ProducedDate,
	}
	if c.ID > 0 {
		return wrap("update production", s.repos.Productions.Update(ctx, production))
	}
	return wrap("record production", s.repos.Productions.Create(ctx, production))
}

func (s *crmService) delete(ctx context.Context, c *DeleteEntity) error {
	var err error
	switch c.Kind {
	case model.EntityClients:
		err = s.repos.Clients.Delete(ctx, c.ID)
	case model.EntityWorkers:
		err = s.repos.Workers.Delete(ctx, c.ID)
	case model.EntityDeals:
		err = s.repos.Deals.Delete(ctx, c.ID)
	case model.EntityAttendance:
		err = s.repos.Attendance.Delete(ctx, c.ID)
	case model.EntityProductions:
		err = s.repos.Productions.Delete(ctx, c.ID)
	default:
		return apperrors.ErrUnknownEntity
	}
	return wrap("delete "+string(c.Kind), err)
}

func (s *crmService) requireClient(ctx context.Context, id uint) error {
	ok, err := s.repos.Clients.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return apperrors.ErrClientNotFound
	}
	return nil
}

func (s *crmService) requireWorker(ctx context.Context, id uint) error {
	ok, err := s.repos.Workers.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check worker: %w", err)
	}
	if !ok {
		return apperrors.ErrWorkerNotFound
	}
	return nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
