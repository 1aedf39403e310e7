package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// FindCardUser looks up the owner of an RFID card by exact uid match, where
// both the card and its owner are active. Returns nil when nothing matches.
func (s *Store) FindCardUser(ctx context.Context, uid string) (*int64, error) {
	var userID int64
	err := s.db.QueryRow(ctx, `
		SELECT u.id
		FROM rfid_cards c
		JOIN users u ON u.id = c.user_id
		WHERE c.uid=$1 AND c.active=true AND u.active=true
		LIMIT 1`, uid).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find card %q: %w", uid, err)
	}
	return &userID, nil
}

type PinCandidate struct {
	UserID  int64
	PinHash string
}

// ActivePinCandidates loads every active user's current pin, where the pin is
// itself active. The hashes are non-invertible, so PIN matching has to scan
// this whole set.
func (s *Store) ActivePinCandidates(ctx context.Context) ([]PinCandidate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.id, p.pin_hash
		FROM users u
		JOIN pins p ON p.id = u.current_pin_id
		WHERE u.active=true AND p.active=true`)
	if err != nil {
		return nil, fmt.Errorf("query pin candidates: %w", err)
	}
	defer rows.Close()

	var candidates []PinCandidate
	for rows.Next() {
		var c PinCandidate
		if err := rows.Scan(&c.UserID, &c.PinHash); err != nil {
			return nil, fmt.Errorf("scan pin candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// IsAllowed checks the grant relation for a (door, user) pair. Absence of a
// row means not allowed; there is no default-allow path.
func (s *Store) IsAllowed(ctx context.Context, doorID, userID int64) (bool, error) {
	var allowed bool
	err := s.db.QueryRow(ctx,
		"SELECT allowed FROM door_access WHERE door_id=$1 AND user_id=$2 LIMIT 1",
		doorID, userID).Scan(&allowed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check access door=%d user=%d: %w", doorID, userID, err)
	}
	return allowed, nil
}
