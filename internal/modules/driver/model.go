// README: Driver profile aggregate and status enumerations.
package driver

import (
	"time"

	"ridehub/internal/types"
)

type ApprovalStatus string

const (
	ApprovalPending   ApprovalStatus = "pending"
	ApprovalApproved  ApprovalStatus = "approved"
	ApprovalRejected  ApprovalStatus = "rejected"
	ApprovalSuspended ApprovalStatus = "suspended"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalSuspended:
		return true
	}
	return false
}

type ActiveStatus string

const (
	ActiveOnline  ActiveStatus = "online"
	ActiveOffline ActiveStatus = "offline"
)

func (s ActiveStatus) Valid() bool {
	return s == ActiveOnline || s == ActiveOffline
}

// Profile is keyed by the underlying account id; one profile per account.
type Profile struct {
	ID              types.ID       `json:"id"`
	AccountID       types.ID       `json:"accountId"`
	ApprovalStatus  ApprovalStatus `json:"approvalStatus"`
	ActiveStatus    ActiveStatus   `json:"activeStatus"`
	VehicleLicense  string         `json:"vehicleLicense"`
	VehicleCapacity int            `json:"vehicleCapacity"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}
