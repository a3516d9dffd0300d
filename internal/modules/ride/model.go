// README: Ride aggregate, status definitions, and the transition table.
package ride

import (
	"time"

	"ridehub/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusPickedUp  Status = "picked_up"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPickedUp, StatusInTransit,
		StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// riderActiveStatuses: a rider may hold at most one ride in these statuses.
var riderActiveStatuses = []Status{StatusPending, StatusAccepted, StatusPickedUp, StatusInTransit}

// driverBusyStatuses: a driver may hold at most one ride in these statuses.
var driverBusyStatuses = []Status{StatusAccepted, StatusPickedUp, StatusInTransit}

// AllowedTransitions is the ride state flow. The chain is intentionally
// linear so the audit trail records every operational phase; skipping
// picked_up or in_transit is structurally impossible.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:  {StatusPickedUp},
	StatusPickedUp:  {StatusInTransit},
	StatusInTransit: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// StatusChange is one entry of the append-only status audit trail.
type StatusChange struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type Ride struct {
	ID            types.ID       `json:"id"`
	RiderID       types.ID       `json:"rider"`
	DriverID      *types.ID      `json:"driver,omitempty"`
	Passengers    int            `json:"passengers"`
	From          string         `json:"from"`
	To            string         `json:"to"`
	Fare          float64        `json:"fare"`
	Status        Status         `json:"status"`
	StatusHistory []StatusChange `json:"statusHistory"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}
