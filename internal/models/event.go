package models

import "time"

const (
	CredentialRFID    = "RFID"
	CredentialPIN     = "PIN"
	CredentialUnknown = "UNKNOWN"
)

const (
	ResultGranted = "granted"
	ResultDenied  = "denied"
	// ResultAlarm exists in the audit schema but no decision path produces it.
	ResultAlarm = "alarm"
)

// Event is the append-only audit record. PinSHA and PinLen are written by a
// single deferred update after the initial insert, for PIN events only.
type Event struct {
	ID             int64     `json:"id" db:"id"`
	TS             time.Time `json:"ts" db:"ts"`
	DoorID         *int64    `json:"door_id,omitempty" db:"door_id"`
	UserID         *int64    `json:"user_id,omitempty" db:"user_id"`
	CredentialType string    `json:"credential_type" db:"credential_type"`
	PresentedUID   *string   `json:"presented_uid,omitempty" db:"presented_uid"`
	Result         string    `json:"result" db:"result"`
	Reason         *string   `json:"reason,omitempty" db:"reason"`
	PinSHA         *string   `json:"pin_sha,omitempty" db:"pin_sha"`
	PinLen         *int      `json:"pin_len,omitempty" db:"pin_len"`
}
