package model

// SnapshotFilter narrows attendance and productions to a single day each.
// A zero date means no filter.
type SnapshotFilter struct {
	AttendanceDate Date
	ProductionDate Date
}

// Snapshot is the full copy of every entity collection, newest first.
// It is never mutated after construction.
type Snapshot struct {
	Clients     []Client     `json:"clients"`
	Workers     []Worker     `json:"workers"`
	Deals       []Deal       `json:"deals"`
	Attendance  []Attendance `json:"attendance"`
	Productions []Production `json:"productions"`
}

// EmptySnapshot returns a snapshot whose collections encode as [] rather than null.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		Clients:     []Client{},
		Workers:     []Worker{},
		Deals:       []Deal{},
		Attendance:  []Attendance{},
		Productions: []Production{},
	}
}

// ClientByID returns the client with id, if present.
func (s *Snapshot) ClientByID(id uint) (*Client, bool) {
	for i := range s.Clients {
		if s.Clients[i].ID == id {
			return &s.Clients[i], true
		}
	}
	return nil, false
}

// WorkerByID returns the worker with id, if present.
func (s *Snapshot) WorkerByID(id uint) (*Worker, bool) {
	for i := range s.Workers {
		if s.Workers[i].ID == id {
			return &s.Workers[i], true
		}
	}
	return nil, false
}
