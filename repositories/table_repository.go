package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
)

type TableRepository interface {
	// Ensure создает стол, если его еще нет. Location существующего стола
	// не трогается никогда — это поле принадлежит администратору.
	Ensure(ctx context.Context, exec SQLExecutor, table *models.TournamentTable) error
	// SetLocation — административная правка расположения; если стола нет,
	// он создается сразу с расположением.
	SetLocation(ctx context.Context, tournamentID int, number int, location *string) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentTable, error)
}

type postgresTableRepository struct {
	db *sql.DB
}

func NewPostgresTableRepository(db *sql.DB) TableRepository {
	return &postgresTableRepository{db: db}
}

func (r *postgresTableRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTableRepository) Ensure(ctx context.Context, exec SQLExecutor, table *models.TournamentTable) error {
	executor := r.getExecutor(exec)
	// Фиктивное обновление номера нужно только ради RETURNING на конфликте.
	query := `
		INSERT INTO tournament_tables (tournament_id, number, location)
		VALUES ($1, $2, NULL)
		ON CONFLICT (tournament_id, number) DO UPDATE SET number = EXCLUDED.number
		RETURNING id, location`

	err := executor.QueryRowContext(ctx, query, table.TournamentID, table.Number).
		Scan(&table.ID, &table.Location)
	if err != nil {
		return fmt.Errorf("failed to ensure table %d for tournament %d: %w", table.Number, table.TournamentID, err)
	}
	return nil
}

func (r *postgresTableRepository) SetLocation(ctx context.Context, tournamentID int, number int, location *string) error {
	executor := r.getExecutor(nil)
	query := `
		INSERT INTO tournament_tables (tournament_id, number, location)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, number) DO UPDATE SET location = EXCLUDED.location`

	_, err := executor.ExecContext(ctx, query, tournamentID, number, location)
	if err != nil {
		return fmt.Errorf("failed to set location for table %d: %w", number, err)
	}
	return nil
}

func (r *postgresTableRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.TournamentTable, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `
		SELECT id, tournament_id, number, location
		FROM tournament_tables
		WHERE tournament_id = $1
		ORDER BY number`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]models.TournamentTable, 0)
	for rows.Next() {
		var t models.TournamentTable
		if scanErr := rows.Scan(&t.ID, &t.TournamentID, &t.Number, &t.Location); scanErr != nil {
			return nil, scanErr
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}
