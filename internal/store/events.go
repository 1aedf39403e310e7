package store

import (
	"context"
	"fmt"
	"time"

	"github.com/doorro/gatekeeper/internal/models"
)

// InsertEvent writes one audit row and returns its id. door_id may be nil when
// the message's door identity could not be resolved.
func (s *Store) InsertEvent(ctx context.Context, e models.Event) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO events (door_id, user_id, credential_type, presented_uid, result, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		e.DoorID, e.UserID, e.CredentialType, e.PresentedUID, e.Result, e.Reason).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return id, nil
}

// AttachPinForensics performs the single permitted post-insert write on an
// event row: the one-way digest and length of a submitted PIN.
func (s *Store) AttachPinForensics(ctx context.Context, eventID int64, pinSHA string, pinLen int) error {
	_, err := s.db.Exec(ctx,
		"UPDATE events SET pin_sha=$1, pin_len=$2 WHERE id=$3", pinSHA, pinLen, eventID)
	if err != nil {
		return fmt.Errorf("attach pin forensics to event %d: %w", eventID, err)
	}
	return nil
}

type EventQuery struct {
	Result         string
	CredentialType string
	From           *time.Time
	To             *time.Time
	Limit          int
}

const maxEventLimit = 500

func (s *Store) ListEvents(ctx context.Context, q EventQuery) ([]models.Event, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > maxEventLimit {
		q.Limit = maxEventLimit
	}

	query := `SELECT id, ts, door_id, user_id, credential_type, presented_uid, result, reason, pin_sha, pin_len
			  FROM events`
	where := []string{}
	args := []interface{}{}
	argIdx := 1

	if q.Result != "" {
		where = append(where, fmt.Sprintf("result=$%d", argIdx))
		args = append(args, q.Result)
		argIdx++
	}
	if q.CredentialType != "" {
		where = append(where, fmt.Sprintf("credential_type=$%d", argIdx))
		args = append(args, q.CredentialType)
		argIdx++
	}
	if q.From != nil {
		where = append(where, fmt.Sprintf("ts>=$%d", argIdx))
		args = append(args, *q.From)
		argIdx++
	}
	if q.To != nil {
		where = append(where, fmt.Sprintf("ts<=$%d", argIdx))
		args = append(args, *q.To)
		argIdx++
	}

	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d", argIdx)
	args = append(args, q.Limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.DoorID, &e.UserID, &e.CredentialType,
			&e.PresentedUID, &e.Result, &e.Reason, &e.PinSHA, &e.PinLen); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
