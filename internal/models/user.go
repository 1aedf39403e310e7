package models

import "time"

type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"full_name" db:"full_name"`
	Active       bool      `json:"active" db:"active"`
	CurrentPinID *int64    `json:"current_pin_id,omitempty" db:"current_pin_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// A user may hold many Pin rows over time; the cascade logic keeps at most the
// one referenced by users.current_pin_id active.
type Pin struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	PinHash   string    `json:"-" db:"pin_hash"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type RfidCard struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	UID       string    `json:"uid" db:"uid"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
