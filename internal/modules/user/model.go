// README: Account aggregate.
package user

import (
	"time"

	"ridehub/internal/types"
)

type User struct {
	ID           types.ID   `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         types.Role `json:"role"`
	Blocked      bool       `json:"isBlocked"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
