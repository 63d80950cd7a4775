package model

import "fmt"

// DealStatus represents the stage of a deal.
type DealStatus string

const (
	DealStatusNew        DealStatus = "new"
	DealStatusInProgress DealStatus = "in_progress"
	DealStatusWon        DealStatus = "won"
	DealStatusLost       DealStatus = "lost"
)

// DealStatuses lists every deal status in display order.
var DealStatuses = []DealStatus{DealStatusNew, DealStatusInProgress, DealStatusWon, DealStatusLost}

// Valid reports whether s is a known deal status.
func (s DealStatus) Valid() bool {
	for _, known := range DealStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Active reports whether a deal in status s still counts towards the pipeline.
func (s DealStatus) Active() bool {
	return s == DealStatusNew || s == DealStatusInProgress
}

// AttendanceStatus represents a worker's status for a day.
type AttendanceStatus string

const (
	AttendancePresent  AttendanceStatus = "present"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceSick     AttendanceStatus = "sick"
	AttendanceVacation AttendanceStatus = "vacation"
)

// AttendanceStatuses lists every attendance status in display order.
var AttendanceStatuses = []AttendanceStatus{AttendancePresent, AttendanceAbsent, AttendanceSick, AttendanceVacation}

// Valid reports whether s is a known attendance status.
func (s AttendanceStatus) Valid() bool {
	for _, known := range AttendanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// EntityKind names one of the record collections managed through the API.
type EntityKind string

const (
	EntityClients     EntityKind = "clients"
	EntityWorkers     EntityKind = "workers"
	EntityDeals       EntityKind = "deals"
	EntityAttendance  EntityKind = "attendance"
	EntityProductions EntityKind = "productions"
)

// EntityKinds lists every entity kind.
var EntityKinds = []EntityKind{EntityClients, EntityWorkers, EntityDeals, EntityAttendance, EntityProductions}

// ErrUnknownEntityKind is returned by ParseEntityKind.
type ErrUnknownEntityKind string

func (e ErrUnknownEntityKind) Error() string {
	return fmt.Sprintf("unknown entity %q", string(e))
}

// ParseEntityKind converts a request parameter into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	for _, kind := range EntityKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", ErrUnknownEntityKind(s)
}
