package models

import "time"

// Role is the single role attached to every identity. A user holds exactly
// one role; the role selected at login must match the stored one.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleReceiver Role = "receiver"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleReceiver, RoleAdmin:
		return true
	}
	return false
}

// User is an identity record. UniqueID is a generated 10-digit key that is
// interchangeable with Username as a login identifier.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;unique;not null;index"`
	Email        string `gorm:"size:120;unique;not null"`
	Password     string `gorm:"size:200;not null"` // bcrypt hash
	Role         Role   `gorm:"size:20;not null;index"`
	Organization string `gorm:"size:200"`
	Phone        string `gorm:"size:20"`
	Address      string
	UniqueID     string `gorm:"size:10;unique"`
	CreatedAt    time.Time
}
