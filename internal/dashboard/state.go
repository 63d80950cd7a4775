package dashboard

import (
	"context"
	"sync"

	"crm/internal/model"
)

// Fetcher reads a full snapshot. The CRM service and the API client both implement it.
type Fetcher interface {
	Snapshot(ctx context.Context, filter model.SnapshotFilter) (*model.Snapshot, error)
}

// Status is the message shown above the dashboard.
type Status struct {
	Text  string `json:"text"`
	Error bool   `json:"error"`
}

// State holds the dashboard's current snapshot, filter and status message.
// The snapshot is only ever replaced as a whole.
type State struct {
	mu       sync.RWMutex
	snapshot *model.Snapshot
	filter   model.SnapshotFilter
	status   Status
}

// NewState returns a State with an empty snapshot.
func NewState(filter model.SnapshotFilter) *State {
	return &State{snapshot: model.EmptySnapshot(), filter: filter}
}

// Snapshot returns the current snapshot. Callers must not modify it.
func (s *State) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Filter returns the active date filter.
func (s *State) Filter() model.SnapshotFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter changes the date filter used by the next Refresh.
func (s *State) SetFilter(filter model.SnapshotFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = filter
}

// Status returns the last status message.
func (s *State) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetStatus replaces the status message.
func (s *State) SetStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Refresh fetches a new snapshot with the active filter. On failure the
// previous snapshot stays in place.
func (s *State) Refresh(ctx context.Context, fetcher Fetcher) error {
	snap, err := fetcher.Snapshot(ctx, s.Filter())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
	return nil
}

// Apply runs mutation, then refetches the snapshot and reports successText.
// Nothing is updated optimistically: if either step fails the error becomes
// the status and the previous snapshot is kept.
func (s *State) Apply(ctx context.Context, fetcher Fetcher, mutation func(context.Context) error, successText string) error {
	if err := mutation(ctx); err != nil {
		s.SetStatus(Status{Text: err.Error(), Error: true})
		return err
	}
	if err := s.Refresh(ctx, fetcher); err != nil {
		s.SetStatus(Status{Text: err.Error(), Error: true})
		return err
	}
	s.SetStatus(Status{Text: successText})
	return nil
}
