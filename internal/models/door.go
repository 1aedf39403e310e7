package models

import "time"

const (
	AccessModeRFIDOrPin  = "RFID_OR_PIN"
	AccessModeRFIDAndPin = "RFID_AND_PIN"
)

type Door struct {
	ID         int64      `json:"id" db:"id"`
	DoorKey    string     `json:"door_key" db:"door_key"`
	Name       *string    `json:"name,omitempty" db:"name"`
	Location   *string    `json:"location,omitempty" db:"location"`
	AccessMode string     `json:"access_mode" db:"access_mode"`
	OpenTimeS  int        `json:"open_time_s" db:"open_time_s"`
	Active     bool       `json:"active" db:"active"`
	LastSeenTS *time.Time `json:"last_seen_ts,omitempty" db:"last_seen_ts"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// DoorAccess is the grant relation; a missing row means not allowed.
type DoorAccess struct {
	DoorID  int64 `json:"door_id" db:"door_id"`
	UserID  int64 `json:"user_id" db:"user_id"`
	Allowed bool  `json:"allowed" db:"allowed"`
}
