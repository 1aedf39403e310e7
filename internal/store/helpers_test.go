package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doorro/gatekeeper/internal/database"
	"github.com/doorro/gatekeeper/internal/store"
)

// openTestStore connects to the database named by TEST_DATABASE_URL, applies
// the production migrations, and truncates every table so each test starts
// from an empty schema. Skips when no test database is available.
func openTestStore(t *testing.T) (*store.Store, *pgxpool.Pool) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.RunMigrations(ctx, pool, "../../migrations"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err = pool.Exec(ctx,
		"TRUNCATE events, door_access, rfid_cards, pins, doors, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return store.New(pool), pool
}

func seedCard(t *testing.T, pool *pgxpool.Pool, userID int64, uid string, active bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO rfid_cards (user_id, uid, active) VALUES ($1, $2, $3) RETURNING id",
		userID, uid, active).Scan(&id)
	if err != nil {
		t.Fatalf("seed card: %v", err)
	}
	return id
}

func seedPin(t *testing.T, pool *pgxpool.Pool, userID int64, active bool) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		"INSERT INTO pins (user_id, pin_hash, active) VALUES ($1, $2, $3) RETURNING id",
		userID, "$2a$04$stub", active).Scan(&id)
	if err != nil {
		t.Fatalf("seed pin: %v", err)
	}
	return id
}

func rowActive(t *testing.T, pool *pgxpool.Pool, table string, id int64) bool {
	t.Helper()
	var active bool
	err := pool.QueryRow(context.Background(),
		"SELECT active FROM "+table+" WHERE id=$1", id).Scan(&active)
	if err != nil {
		t.Fatalf("read %s %d: %v", table, id, err)
	}
	return active
}
