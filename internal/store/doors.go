package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/doorro/gatekeeper/internal/models"
)

const doorColumns = "id, door_key, name, location, access_mode, open_time_s, active, last_seen_ts, created_at"

type DoorCreate struct {
	DoorKey    string
	Name       *string
	Location   *string
	AccessMode string
	OpenTimeS  int
	Active     bool
}

type DoorUpdate struct {
	DoorKey    *string
	Name       *string
	NameSet    bool
	Location   *string
	LocSet     bool
	AccessMode *string
	OpenTimeS  *int
	Active     *bool
}

func (s *Store) ListDoors(ctx context.Context, limit int) ([]models.Door, error) {
	rows, err := s.db.Query(ctx,
		"SELECT "+doorColumns+" FROM doors ORDER BY id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query doors: %w", err)
	}
	defer rows.Close()

	var doors []models.Door
	for rows.Next() {
		var d models.Door
		if err := scanDoor(rows, &d); err != nil {
			return nil, err
		}
		doors = append(doors, d)
	}
	return doors, rows.Err()
}

func (s *Store) GetDoor(ctx context.Context, id int64) (*models.Door, error) {
	var d models.Door
	err := scanDoor(s.db.QueryRow(ctx, "SELECT "+doorColumns+" FROM doors WHERE id=$1", id), &d)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get door %d: %w", id, err)
	}
	return &d, nil
}

func (s *Store) CreateDoor(ctx context.Context, in DoorCreate) (*models.Door, error) {
	var d models.Door
	err := scanDoor(s.db.QueryRow(ctx, `
		INSERT INTO doors (door_key, name, location, access_mode, open_time_s, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+doorColumns,
		in.DoorKey, in.Name, in.Location, in.AccessMode, in.OpenTimeS, in.Active), &d)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert door: %w", err)
	}
	return &d, nil
}

func (s *Store) UpdateDoor(ctx context.Context, id int64, upd DoorUpdate) (*models.Door, error) {
	set := []string{}
	args := []interface{}{}
	argIdx := 1

	add := func(col string, val interface{}) {
		set = append(set, fmt.Sprintf("%s=$%d", col, argIdx))
		args = append(args, val)
		argIdx++
	}

	if upd.DoorKey != nil {
		add("door_key", *upd.DoorKey)
	}
	if upd.NameSet {
		add("name", upd.Name)
	}
	if upd.LocSet {
		add("location", upd.Location)
	}
	if upd.AccessMode != nil {
		add("access_mode", *upd.AccessMode)
	}
	if upd.OpenTimeS != nil {
		add("open_time_s", *upd.OpenTimeS)
	}
	if upd.Active != nil {
		add("active", *upd.Active)
	}
	if len(set) == 0 {
		return nil, ErrNoFields
	}

	query := fmt.Sprintf("UPDATE doors SET %s WHERE id=$%d", strings.Join(set, ", "), argIdx)
	args = append(args, id)

	tag, err := s.db.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update door %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return s.GetDoor(ctx, id)
}

func (s *Store) DeleteDoor(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, "DELETE FROM doors WHERE id=$1", id)
	if err != nil {
		return fmt.Errorf("delete door %d: %w", id, err)
	}
	return nil
}

// FindActiveDoorID resolves an external door key to the internal id. Returns
// nil (and no error) when no active door carries the key.
func (s *Store) FindActiveDoorID(ctx context.Context, doorKey string) (*int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"SELECT id FROM doors WHERE door_key=$1 AND active=true LIMIT 1", doorKey).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve door %q: %w", doorKey, err)
	}
	return &id, nil
}

type doorScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoor(row doorScanner, d *models.Door) error {
	return row.Scan(&d.ID, &d.DoorKey, &d.Name, &d.Location, &d.AccessMode,
		&d.OpenTimeS, &d.Active, &d.LastSeenTS, &d.CreatedAt)
}
