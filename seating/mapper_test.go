package seating

import (
	"testing"

	"github.com/Vyasma-Mafia/maftourbot/gomafia"
	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestBuildSnapshot_EmptyGames(t *testing.T) {
	snap := BuildSnapshot(42, gomafia.TournamentInfo{Title: strPtr("Кубок")}, nil)

	assert.Equal(t, 42, snap.ExternalID)
	assert.Equal(t, "Кубок", snap.Name)
	assert.Empty(t, snap.Rounds)
}

func TestBuildSnapshot_NameFallback(t *testing.T) {
	snap := BuildSnapshot(42, gomafia.TournamentInfo{}, nil)
	assert.Equal(t, "Турнир #42", snap.Name)

	snap = BuildSnapshot(42, gomafia.TournamentInfo{Title: strPtr("")}, nil)
	assert.Equal(t, "Турнир #42", snap.Name)
}

func TestBuildSnapshot_ExternalIDFromInfo(t *testing.T) {
	snap := BuildSnapshot(42, gomafia.TournamentInfo{ID: strPtr("77")}, nil)
	assert.Equal(t, 77, snap.ExternalID)
	// Фолбэк-имя строится из того же id, что и ExternalID снапшота.
	assert.Equal(t, "Турнир #77", snap.Name)

	// Невалидный id из источника игнорируется.
	snap = BuildSnapshot(42, gomafia.TournamentInfo{ID: strPtr("abc")}, nil)
	assert.Equal(t, 42, snap.ExternalID)
}

func TestBuildSnapshot_MissingNumbersDefaultToZero(t *testing.T) {
	games := []gomafia.Game{
		{
			Table: []gomafia.TablePlayer{
				{ID: intPtr(7), Place: intPtr(1)},
			},
		},
	}

	snap := BuildSnapshot(42, gomafia.TournamentInfo{}, games)

	require.Len(t, snap.Rounds, 1)
	assert.Equal(t, 0, snap.Rounds[0].Number)
	require.Len(t, snap.Rounds[0].Tables, 1)
	assert.Equal(t, 0, snap.Rounds[0].Tables[0].Number)
}

func TestBuildSnapshot_DropsIncompleteSeats(t *testing.T) {
	games := []gomafia.Game{
		{
			GameNum:  intPtr(1),
			TableNum: intPtr(1),
			Table: []gomafia.TablePlayer{
				{ID: intPtr(7), Place: intPtr(1)},
				{ID: nil, Place: intPtr(2)},
				{ID: intPtr(8), Place: nil},
			},
		},
	}

	snap := BuildSnapshot(42, gomafia.TournamentInfo{}, games)

	require.Len(t, snap.Rounds, 1)
	require.Len(t, snap.Rounds[0].Tables, 1)
	seats := snap.Rounds[0].Tables[0].Seats
	require.Len(t, seats, 1)
	assert.Equal(t, 7, seats[0].GomafiaID)
}

func TestBuildSnapshot_FirstSeenWinsWithinTable(t *testing.T) {
	games := []gomafia.Game{
		{
			GameNum:  intPtr(1),
			TableNum: intPtr(1),
			Table: []gomafia.TablePlayer{
				{ID: intPtr(7), Place: intPtr(1)},
				{ID: intPtr(7), Place: intPtr(5)},
			},
		},
	}

	snap := BuildSnapshot(42, gomafia.TournamentInfo{}, games)

	seats := snap.Rounds[0].Tables[0].Seats
	require.Len(t, seats, 1)
	assert.Equal(t, 1, seats[0].Position)
}

func TestBuildSnapshot_KeepsEmptyTables(t *testing.T) {
	games := []gomafia.Game{
		{GameNum: intPtr(1), TableNum: intPtr(3)},
	}

	snap := BuildSnapshot(42, gomafia.TournamentInfo{}, games)

	require.Len(t, snap.Rounds, 1)
	require.Len(t, snap.Rounds[0].Tables, 1)
	assert.Equal(t, 3, snap.Rounds[0].Tables[0].Number)
	assert.Empty(t, snap.Rounds[0].Tables[0].Seats)
}

func TestBuildSnapshot_DeterministicOrdering(t *testing.T) {
	games := []gomafia.Game{
		{GameNum: intPtr(2), TableNum: intPtr(2), Table: []gomafia.TablePlayer{{ID: intPtr(1), Place: intPtr(1)}}},
		{GameNum: intPtr(1), TableNum: intPtr(3), Table: []gomafia.TablePlayer{{ID: intPtr(2), Place: intPtr(1)}}},
		{GameNum: intPtr(1), TableNum: intPtr(1), Table: []gomafia.TablePlayer{{ID: intPtr(3), Place: intPtr(1)}}},
		{GameNum: intPtr(2), TableNum: intPtr(1), Table: []gomafia.TablePlayer{{ID: intPtr(4), Place: intPtr(1)}}},
	}
	reversed := []gomafia.Game{games[3], games[2], games[1], games[0]}

	first := BuildSnapshot(42, gomafia.TournamentInfo{}, games)
	second := BuildSnapshot(42, gomafia.TournamentInfo{}, reversed)

	require.Len(t, first.Rounds, 2)
	assert.Equal(t, 1, first.Rounds[0].Number)
	assert.Equal(t, 2, first.Rounds[1].Number)
	assert.Equal(t, []models.SnapshotTable{
		{Number: 1, Seats: []models.SnapshotSeat{{GomafiaID: 3, Position: 1}}},
		{Number: 3, Seats: []models.SnapshotSeat{{GomafiaID: 2, Position: 1}}},
	}, first.Rounds[0].Tables)

	assert.Equal(t, first, second)
}
