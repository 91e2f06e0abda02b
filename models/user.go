// models/user.go
package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// User is the single identity record for customers and staff alike.
// NoShowCount feeds the escalating no-show charge formula.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Phone        string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Role         Role      `bson:"role" json:"role"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	NoShowCount  int       `bson:"noShowCount" json:"noShowCount"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AuthContext is the caller identity the HTTP layer resolves from the
// bearer token and passes into engine methods.
type AuthContext struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// IsStaff reports whether the caller holds staff or admin privileges.
func (a AuthContext) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

// Owns reports whether the caller is the customer behind userID.
func (a AuthContext) Owns(userID string) bool {
	return a.UserID == userID
}
