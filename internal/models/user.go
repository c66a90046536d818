package models

import "time"

type UserRole string

const (
	UserRoleDonor       UserRole = "DONOR"
	UserRoleBeneficiary UserRole = "BENEFICIARY"
	UserRoleVendor      UserRole = "VENDOR"
	UserRoleAdmin       UserRole = "ADMIN"
	UserRoleOracle      UserRole = "ORACLE"
	UserRoleGovernment  UserRole = "GOVERNMENT"
)

// Valid reports whether r is a known role, including GOVERNMENT which is
// provisioned out of band and never self-registered.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleDonor, UserRoleBeneficiary, UserRoleVendor, UserRoleAdmin, UserRoleOracle, UserRoleGovernment:
		return true
	}
	return false
}

type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusBlocked   UserStatus = "blocked"
	UserStatusSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusBlocked, UserStatusSuspended:
		return true
	}
	return false
}

// Locked accounts may complete signature verification but never receive tokens.
func (s UserStatus) Locked() bool {
	return s == UserStatusBlocked || s == UserStatusSuspended
}

// InitialStatus is the status a freshly registered account starts in.
func InitialStatus(role UserRole) UserStatus {
	switch role {
	case UserRoleDonor:
		return UserStatusActive
	case UserRoleAdmin:
		return UserStatusBlocked
	default:
		return UserStatusPending
	}
}

type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  []byte
	WalletAddress string
	Role          UserRole
	Status        UserStatus
	Nonce         *string
	NonceIssuedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
