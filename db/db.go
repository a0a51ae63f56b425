package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database within %v: %w (close also failed: %v)", timeout, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// Migrate создает пять отношений хранилища, если их еще нет. Уникальный
// индекс по (round_id, table_number, position) закрепляет слоты на уровне
// БД. Уникальность игрока в рамках тура обеспечивает движок синхронизации:
// замена фактов идет стол за столом, и при пересадке игрока старый факт
// живет до обработки его прежнего стола в том же проходе.
func Migrate(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id SERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL UNIQUE,
			gomafia_profile_url TEXT NOT NULL,
			gomafia_id INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_players_gomafia_id ON players (gomafia_id)`,
		`CREATE TABLE IF NOT EXISTS tournaments (
			id SERIAL PRIMARY KEY,
			external_id INTEGER NOT NULL UNIQUE,
			name TEXT NOT NULL,
			ended BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			start_time TEXT,
			UNIQUE (tournament_id, number)
		)`,
		`CREATE TABLE IF NOT EXISTS tournament_tables (
			id SERIAL PRIMARY KEY,
			tournament_id INTEGER NOT NULL REFERENCES tournaments (id) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			location TEXT,
			UNIQUE (tournament_id, number)
		)`,
		`CREATE TABLE IF NOT EXISTS seat_assignments (
			id SERIAL PRIMARY KEY,
			round_id INTEGER NOT NULL REFERENCES rounds (id) ON DELETE CASCADE,
			table_number INTEGER NOT NULL,
			gomafia_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			UNIQUE (round_id, table_number, position)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
