package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTournamentService(store *memStore) *TournamentService {
	return NewTournamentService(store.Tournaments(), store.Rounds(), store.Tables(), nil)
}

func TestSetRoundStartTime(t *testing.T) {
	store := newMemStore()
	seedTournament(t, store, snapshotFixture())
	svc := newTestTournamentService(store)

	require.NoError(t, svc.SetRoundStartTime(context.Background(), 42, 1, strPtr("19:00")))

	tournament, err := svc.GetTournament(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, tournament.Rounds[0].StartTime)
	assert.Equal(t, "19:00", *tournament.Rounds[0].StartTime)
}

func TestSetRoundStartTime_UnknownRound(t *testing.T) {
	store := newMemStore()
	seedTournament(t, store, snapshotFixture())
	svc := newTestTournamentService(store)

	err := svc.SetRoundStartTime(context.Background(), 42, 9, strPtr("19:00"))
	assert.ErrorIs(t, err, ErrRoundNotFound)
}

func TestSetTableLocation_CreatesMissingTable(t *testing.T) {
	store := newMemStore()
	seedTournament(t, store, snapshotFixture())
	svc := newTestTournamentService(store)

	// Стола 9 в снапшотах не было: правка заводит его сразу с расположением.
	require.NoError(t, svc.SetTableLocation(context.Background(), 42, 9, strPtr("Сцена")))

	tables, err := svc.GetTournamentTables(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, 9, tables[2].Number)
	require.NotNil(t, tables[2].Location)
	assert.Equal(t, "Сцена", *tables[2].Location)
}

func TestSetTableLocation_UnknownTournament(t *testing.T) {
	store := newMemStore()
	svc := newTestTournamentService(store)

	err := svc.SetTableLocation(context.Background(), 42, 1, strPtr("Зал"))
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestEndTournament(t *testing.T) {
	store := newMemStore()
	seedTournament(t, store, snapshotFixture())
	svc := newTestTournamentService(store)

	require.NoError(t, svc.EndTournament(context.Background(), 42))

	active, err := svc.ListActiveTournaments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListTournaments(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Ended)
}
