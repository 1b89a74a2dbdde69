/**
 * @description
 * This file defines the minimal user directory model the reward-service needs:
 * enough to validate scan attribution and to address earnings to a payee.
 * Account management itself lives elsewhere.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole enumerates the participant roles in the reward network.
type UserRole string

const (
	RoleClient      UserRole = "client"
	RoleDistributor UserRole = "distributor"
	RoleAgent       UserRole = "agent"
)

// User maps to the `users` table.
type User struct {
	ID        uuid.UUID `json:"id"`
	Role      UserRole  `json:"role"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
