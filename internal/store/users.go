package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/doorro/gatekeeper/internal/models"
)

const userColumns = "id, full_name, active, current_pin_id, created_at"

// UserUpdate is a partial update. CurrentPinSet distinguishes "set
// current_pin_id (possibly to null)" from "leave it alone".
type UserUpdate struct {
	FullName      *string
	Active        *bool
	CurrentPinID  *int64
	CurrentPinSet bool
}

func (s *Store) ListUsers(ctx context.Context, limit int) ([]models.User, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FullName, &u.Active, &u.CurrentPinID, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=$1", id).
		Scan(&u.ID, &u.FullName, &u.Active, &u.CurrentPinID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, fullName string, active bool) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"INSERT INTO users (full_name, active) VALUES ($1, $2) RETURNING "+userColumns,
		fullName, active).
		Scan(&u.ID, &u.FullName, &u.Active, &u.CurrentPinID, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &u, nil
}

// UpdateUser applies a partial update and runs the activation cascade in the
// same transaction. Changing active re-asserts the user's state onto every
// owned RFID card and onto whatever pin current_pin_id designates at that
// moment. Explicitly assigning a non-null current pin aligns that pin's
// active flag with the user's (possibly just-updated) active flag. Any
// failure rolls the whole update back.
func (s *Store) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (*models.User, error) {
	set := []string{}
	args := []interface{}{}
	argIdx := 1

	if upd.FullName != nil {
		set = append(set, fmt.Sprintf("full_name=$%d", argIdx))
		args = append(args, *upd.FullName)
		argIdx++
	}
	if upd.Active != nil {
		set = append(set, fmt.Sprintf("active=$%d", argIdx))
		args = append(args, *upd.Active)
		argIdx++
	}
	if upd.CurrentPinSet {
		set = append(set, fmt.Sprintf("current_pin_id=$%d", argIdx))
		args = append(args, upd.CurrentPinID)
		argIdx++
	}
	if len(set) == 0 {
		return nil, ErrNoFields
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin user update: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf("UPDATE users SET %s WHERE id=$%d", strings.Join(set, ", "), argIdx)
	args = append(args, id)
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	if upd.Active != nil {
		if _, err := tx.Exec(ctx,
			"UPDATE rfid_cards SET active=$1 WHERE user_id=$2", *upd.Active, id); err != nil {
			return nil, fmt.Errorf("cascade cards for user %d: %w", id, err)
		}
		// Live join on current_pin_id: targets whatever pin is designated now,
		// keeping the pointer itself intact.
		if _, err := tx.Exec(ctx, `
			UPDATE pins SET active=$1
			FROM users
			WHERE users.current_pin_id = pins.id AND users.id=$2`,
			*upd.Active, id); err != nil {
			return nil, fmt.Errorf("cascade current pin for user %d: %w", id, err)
		}
	}

	if upd.CurrentPinSet && upd.CurrentPinID != nil {
		var active bool
		if err := tx.QueryRow(ctx,
			"SELECT active FROM users WHERE id=$1", id).Scan(&active); err != nil {
			return nil, fmt.Errorf("read user %d active: %w", id, err)
		}
		if _, err := tx.Exec(ctx,
			"UPDATE pins SET active=$1 WHERE id=$2", active, *upd.CurrentPinID); err != nil {
			return nil, fmt.Errorf("align assigned pin %d: %w", *upd.CurrentPinID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit user update: %w", err)
	}

	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, "DELETE FROM users WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
