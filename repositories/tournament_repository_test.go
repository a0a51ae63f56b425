package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTournamentRepository_GetHydrated_SingleReadTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTournamentRepository(db)
	createdAt := time.Now()

	// Все четыре чтения выполняются между Begin и Commit одной транзакции.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, external_id, name, ended, created_at`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "ended", "created_at"}).
			AddRow(1, 42, "Кубок", false, createdAt))
	mock.ExpectQuery(`SELECT id, tournament_id, number, location`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "number", "location"}).
			AddRow(2, 1, 3, "Малый зал"))
	mock.ExpectQuery(`SELECT id, tournament_id, number, start_time`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "number", "start_time"}).
			AddRow(5, 1, 1, nil))
	mock.ExpectQuery(`SELECT s.id, s.round_id, s.table_number, s.gomafia_id, s.position`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "round_id", "table_number", "gomafia_id", "position"}).
			AddRow(9, 5, 3, 7, 2))
	mock.ExpectCommit()

	tournament, err := repo.GetHydratedByExternalID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 42, tournament.ExternalID)
	require.Len(t, tournament.Tables, 1)
	assert.Equal(t, 3, tournament.Tables[0].Number)
	require.Len(t, tournament.Rounds, 1)
	require.Len(t, tournament.Rounds[0].Seats, 1)
	assert.Equal(t, 7, tournament.Rounds[0].Seats[0].GomafiaID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepository_GetHydrated_NotFoundRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTournamentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, external_id, name, ended, created_at`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "ended", "created_at"}))
	mock.ExpectRollback()

	_, err = repo.GetHydratedByExternalID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTournamentRepository_ListActiveHydrated_SingleReadTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresTournamentRepository(db)
	createdAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, external_id, name, ended, created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "ended", "created_at"}).
			AddRow(1, 42, "Кубок", false, createdAt))
	mock.ExpectQuery(`SELECT id, tournament_id, number, location`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "number", "location"}))
	mock.ExpectQuery(`SELECT id, tournament_id, number, start_time`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "number", "start_time"}))
	mock.ExpectQuery(`SELECT s.id, s.round_id, s.table_number, s.gomafia_id, s.position`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "round_id", "table_number", "gomafia_id", "position"}))
	mock.ExpectCommit()

	tournaments, err := repo.ListActiveHydrated(context.Background())
	require.NoError(t, err)
	require.Len(t, tournaments, 1)
	assert.Equal(t, 42, tournaments[0].ExternalID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
