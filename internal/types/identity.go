// README: Caller identity and role enumeration shared across modules.
package types

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleRider, RoleDriver:
		return true
	}
	return false
}

// Identity is the resolved caller of a request. It is always derived from a
// verified credential and threaded through call parameters, never kept in
// process-wide state.
type Identity struct {
	UserID ID
	Role   Role
}
