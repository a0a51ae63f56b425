package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrPlayerTelegramConflict = errors.New("telegram id conflict")
)

type PlayerRepository interface {
	// Save вставляет игрока или, если telegram_id уже известен, обновляет
	// его привязку к профилю gomafia. Дубликатов по telegram_id не бывает.
	Save(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Player, error)
	ListByGomafiaID(ctx context.Context, gomafiaID int) ([]models.Player, error)
	ListAll(ctx context.Context) ([]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Save(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (telegram_id, gomafia_profile_url, gomafia_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO UPDATE SET
			gomafia_profile_url = EXCLUDED.gomafia_profile_url,
			gomafia_id = EXCLUDED.gomafia_id
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query, p.TelegramID, p.GomafiaProfileURL, p.GomafiaID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrPlayerTelegramConflict
		}
		return fmt.Errorf("failed to save player (telegram_id %d): %w", p.TelegramID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Player, error) {
	executor := r.getExecutor(nil)
	query := `
		SELECT id, telegram_id, gomafia_profile_url, gomafia_id, created_at
		FROM players
		WHERE telegram_id = $1`

	p := &models.Player{}
	err := executor.QueryRowContext(ctx, query, telegramID).
		Scan(&p.ID, &p.TelegramID, &p.GomafiaProfileURL, &p.GomafiaID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByGomafiaID(ctx context.Context, gomafiaID int) ([]models.Player, error) {
	query := `
		SELECT id, telegram_id, gomafia_profile_url, gomafia_id, created_at
		FROM players
		WHERE gomafia_id = $1
		ORDER BY id`
	return r.queryPlayers(ctx, query, gomafiaID)
}

func (r *postgresPlayerRepository) ListAll(ctx context.Context) ([]models.Player, error) {
	query := `
		SELECT id, telegram_id, gomafia_profile_url, gomafia_id, created_at
		FROM players
		ORDER BY id`
	return r.queryPlayers(ctx, query)
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]models.Player, error) {
	executor := r.getExecutor(nil)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.TelegramID, &p.GomafiaProfileURL, &p.GomafiaID, &p.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return players, nil
}
