package model

import (
	"time"

	"souksync/internal/domain"

	"github.com/google/uuid"
)

// Role determines what a user may do on the platform. New accounts created
// through OTP verification default to kiosk owner.
type Role string

const (
	RoleKioskOwner  Role = "kiosk_owner"
	RoleDistributor Role = "distributor"
	RoleAdmin       Role = "admin"
)

// User is a domain entity representing an authenticated account keyed by
// phone number. The phone is the uniqueness constraint; the id is internal.
type User struct {
	ID         string
	Phone      string
	Role       Role
	CreatedAt  time.Time
	LastSeenAt time.Time
}

func NewUser(id string, phone string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if phone == "" {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = RoleKioskOwner
	}
	now := time.Now()
	return &User{
		ID:         id,
		Phone:      phone,
		Role:       role,
		CreatedAt:  now,
		LastSeenAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastSeenAt = time.Now() }
