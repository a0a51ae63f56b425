package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	// Upsert вставляет тур или, если он уже есть, дозаполняет start_time —
	// но только когда текущее значение NULL. Выставленное администратором
	// время синхронизация никогда не перезаписывает.
	Upsert(ctx context.Context, exec SQLExecutor, round *models.Round) error
	// SetStartTime — явная административная правка, действует всегда.
	SetStartTime(ctx context.Context, tournamentID int, number int, startTime *string) error
	GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID int, number int) (*models.Round, error)
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Upsert(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	// COALESCE сохраняет уже установленное время: кандидат из снапшота
	// применяется только к пустому полю.
	query := `
		INSERT INTO rounds (tournament_id, number, start_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (tournament_id, number) DO UPDATE
			SET start_time = COALESCE(rounds.start_time, EXCLUDED.start_time)
		RETURNING id, start_time`

	err := executor.QueryRowContext(ctx, query, round.TournamentID, round.Number, round.StartTime).
		Scan(&round.ID, &round.StartTime)
	if err != nil {
		return fmt.Errorf("failed to upsert round %d for tournament %d: %w", round.Number, round.TournamentID, err)
	}
	return nil
}

func (r *postgresRoundRepository) SetStartTime(ctx context.Context, tournamentID int, number int, startTime *string) error {
	executor := r.getExecutor(nil)
	query := `UPDATE rounds SET start_time = $1 WHERE tournament_id = $2 AND number = $3`
	result, err := executor.ExecContext(ctx, query, startTime, tournamentID, number)
	if err != nil {
		return fmt.Errorf("failed to set start time for round %d: %w", number, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, exec SQLExecutor, tournamentID int, number int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, number, start_time
		FROM rounds
		WHERE tournament_id = $1 AND number = $2`

	round := &models.Round{}
	err := executor.QueryRowContext(ctx, query, tournamentID, number).
		Scan(&round.ID, &round.TournamentID, &round.Number, &round.StartTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}
