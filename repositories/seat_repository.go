package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
)

type SeatRepository interface {
	// ReplaceForRoundTable удаляет все факты рассадки пары (тур, стол) и
	// вставляет новые. Пустой список оставляет стол без посадок — это
	// легитимное состояние. Факты для других столов и туров не трогаются.
	ReplaceForRoundTable(ctx context.Context, exec SQLExecutor, roundID int, tableNumber int, seats []models.SeatAssignment) error
	// ListGomafiaIDsByTournament возвращает различные gomafia id, у которых
	// есть хоть один факт рассадки в любом туре турнира.
	ListGomafiaIDsByTournament(ctx context.Context, tournamentID int) ([]int, error)
}

type postgresSeatRepository struct {
	db *sql.DB
}

func NewPostgresSeatRepository(db *sql.DB) SeatRepository {
	return &postgresSeatRepository{db: db}
}

func (r *postgresSeatRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSeatRepository) ReplaceForRoundTable(ctx context.Context, exec SQLExecutor, roundID int, tableNumber int, seats []models.SeatAssignment) error {
	executor := r.getExecutor(exec)

	_, err := executor.ExecContext(ctx,
		`DELETE FROM seat_assignments WHERE round_id = $1 AND table_number = $2`,
		roundID, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to clear seat assignments for round %d table %d: %w", roundID, tableNumber, err)
	}

	for _, seat := range seats {
		_, err = executor.ExecContext(ctx,
			`INSERT INTO seat_assignments (round_id, table_number, gomafia_id, position)
			 VALUES ($1, $2, $3, $4)`,
			roundID, tableNumber, seat.GomafiaID, seat.Position)
		if err != nil {
			return fmt.Errorf("failed to insert seat assignment (round %d, table %d, position %d): %w",
				roundID, tableNumber, seat.Position, err)
		}
	}
	return nil
}

func (r *postgresSeatRepository) ListGomafiaIDsByTournament(ctx context.Context, tournamentID int) ([]int, error) {
	executor := r.getExecutor(nil)
	rows, err := executor.QueryContext(ctx, `
		SELECT DISTINCT s.gomafia_id
		FROM seat_assignments s
		JOIN rounds r ON r.id = s.round_id
		WHERE r.tournament_id = $1
		ORDER BY s.gomafia_id`, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
