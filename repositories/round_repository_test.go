package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRepository_Upsert_KeepsExistingStartTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRoundRepository(db)

	// База возвращает уже установленное время, кандидат проигнорирован.
	existing := "19:00"
	mock.ExpectQuery(`INSERT INTO rounds`).
		WithArgs(1, 2, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time"}).AddRow(8, existing))

	round := &models.Round{TournamentID: 1, Number: 2}
	require.NoError(t, repo.Upsert(context.Background(), nil, round))

	assert.Equal(t, 8, round.ID)
	require.NotNil(t, round.StartTime)
	assert.Equal(t, "19:00", *round.StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoundRepository_SetStartTime_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRoundRepository(db)

	startTime := "20:30"
	mock.ExpectExec(`UPDATE rounds SET start_time`).
		WithArgs(startTime, 1, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.SetStartTime(context.Background(), 1, 9, &startTime)
	assert.ErrorIs(t, err, ErrRoundNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
