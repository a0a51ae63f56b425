package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	// Upsert вставляет турнир по external_id или обновляет только имя.
	// Флаг ended и прочие поля синхронизация не трогает.
	Upsert(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByExternalID(ctx context.Context, exec SQLExecutor, externalID int) (*models.Tournament, error)
	// GetHydratedByExternalID возвращает турнир с турами, столами и фактами
	// рассадки.
	GetHydratedByExternalID(ctx context.Context, externalID int) (*models.Tournament, error)
	ListAll(ctx context.Context) ([]models.Tournament, error)
	ListActive(ctx context.Context) ([]models.Tournament, error)
	// ListActiveHydrated возвращает все не завершенные турниры с полной
	// гидрацией — рабочий набор для поиска рассадки игрока.
	ListActiveHydrated(ctx context.Context) ([]models.Tournament, error)
	SetEnded(ctx context.Context, externalID int, ended bool) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Upsert(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (external_id, name)
		VALUES ($1, $2)
		ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, ended, created_at`

	err := executor.QueryRowContext(ctx, query, t.ExternalID, t.Name).
		Scan(&t.ID, &t.Ended, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tournament %d: %w", t.ExternalID, err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByExternalID(ctx context.Context, exec SQLExecutor, externalID int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, external_id, name, ended, created_at
		FROM tournaments
		WHERE external_id = $1`

	t := &models.Tournament{}
	err := executor.QueryRowContext(ctx, query, externalID).
		Scan(&t.ID, &t.ExternalID, &t.Name, &t.Ended, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetHydratedByExternalID читает турнир и все связанные отношения одной
// read-only транзакцией: читатель видит либо состояние до коммита
// синхронизации, либо после, но не смесь.
func (r *postgresTournamentRepository) GetHydratedByExternalID(ctx context.Context, externalID int) (*models.Tournament, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := r.GetByExternalID(ctx, tx, externalID)
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read transaction: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListAll(ctx context.Context) ([]models.Tournament, error) {
	return r.list(ctx, nil, `
		SELECT id, external_id, name, ended, created_at
		FROM tournaments
		ORDER BY created_at DESC, id DESC`)
}

func (r *postgresTournamentRepository) ListActive(ctx context.Context) ([]models.Tournament, error) {
	return r.list(ctx, nil, `
		SELECT id, external_id, name, ended, created_at
		FROM tournaments
		WHERE ended = FALSE
		ORDER BY created_at DESC, id DESC`)
}

func (r *postgresTournamentRepository) ListActiveHydrated(ctx context.Context) ([]models.Tournament, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tournaments, err := r.list(ctx, tx, `
		SELECT id, external_id, name, ended, created_at
		FROM tournaments
		WHERE ended = FALSE
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	for i := range tournaments {
		if err := r.hydrate(ctx, tx, &tournaments[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read transaction: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) SetEnded(ctx context.Context, externalID int, ended bool) error {
	executor := r.getExecutor(nil)
	query := `UPDATE tournaments SET ended = $1 WHERE external_id = $2`
	result, err := executor.ExecContext(ctx, query, ended, externalID)
	if err != nil {
		return fmt.Errorf("failed to update ended flag for tournament %d: %w", externalID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) list(ctx context.Context, exec SQLExecutor, query string) ([]models.Tournament, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(&t.ID, &t.ExternalID, &t.Name, &t.Ended, &t.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

// hydrate дозагружает туры (с фактами рассадки) и столы турнира в рамках
// переданного executor'а.
func (r *postgresTournamentRepository) hydrate(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)

	tableRows, err := executor.QueryContext(ctx, `
		SELECT id, tournament_id, number, location
		FROM tournament_tables
		WHERE tournament_id = $1
		ORDER BY number`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to load tables for tournament %d: %w", t.ExternalID, err)
	}
	defer tableRows.Close()

	t.Tables = make([]models.TournamentTable, 0)
	for tableRows.Next() {
		var table models.TournamentTable
		if scanErr := tableRows.Scan(&table.ID, &table.TournamentID, &table.Number, &table.Location); scanErr != nil {
			return scanErr
		}
		t.Tables = append(t.Tables, table)
	}
	if err = tableRows.Err(); err != nil {
		return err
	}

	roundRows, err := executor.QueryContext(ctx, `
		SELECT id, tournament_id, number, start_time
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY number`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to load rounds for tournament %d: %w", t.ExternalID, err)
	}
	defer roundRows.Close()

	t.Rounds = make([]models.Round, 0)
	roundIndex := make(map[int]int)
	for roundRows.Next() {
		var round models.Round
		if scanErr := roundRows.Scan(&round.ID, &round.TournamentID, &round.Number, &round.StartTime); scanErr != nil {
			return scanErr
		}
		round.Seats = make([]models.SeatAssignment, 0)
		roundIndex[round.ID] = len(t.Rounds)
		t.Rounds = append(t.Rounds, round)
	}
	if err = roundRows.Err(); err != nil {
		return err
	}

	seatRows, err := executor.QueryContext(ctx, `
		SELECT s.id, s.round_id, s.table_number, s.gomafia_id, s.position
		FROM seat_assignments s
		JOIN rounds r ON r.id = s.round_id
		WHERE r.tournament_id = $1
		ORDER BY s.round_id, s.table_number, s.position`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to load seat assignments for tournament %d: %w", t.ExternalID, err)
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var seat models.SeatAssignment
		if scanErr := seatRows.Scan(&seat.ID, &seat.RoundID, &seat.TableNumber, &seat.GomafiaID, &seat.Position); scanErr != nil {
			return scanErr
		}
		if idx, ok := roundIndex[seat.RoundID]; ok {
			t.Rounds[idx].Seats = append(t.Rounds[idx].Seats, seat)
		}
	}
	return seatRows.Err()
}
