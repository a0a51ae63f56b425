package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Vyasma-Mafia/maftourbot/gomafia"
	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
)

// memStore — хранилище в памяти с той же семантикой, что и postgres-слой:
// sticky-поля, замена фактов рассадки по паре (тур, стол), ошибки
// not-found. Интерфейсы репозиториев реализуются тонкими адаптерами
// поверх общих данных.
type memStore struct {
	mu     sync.Mutex
	nextID int

	tournaments []*models.Tournament
	rounds      []*models.Round
	tables      []*models.TournamentTable
	seats       []models.SeatAssignment
	players     []*models.Player
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *memStore) Tournaments() repositories.TournamentRepository { return tournamentRepo{m} }
func (m *memStore) Rounds() repositories.RoundRepository           { return roundRepo{m} }
func (m *memStore) Tables() repositories.TableRepository           { return tableRepo{m} }
func (m *memStore) Seats() repositories.SeatRepository             { return seatRepo{m} }
func (m *memStore) Players() repositories.PlayerRepository         { return playerRepo{m} }
func (m *memStore) Tx() repositories.TxManager                     { return txManager{m} }

// hydrate собирает копию турнира с турами, столами и фактами рассадки в
// том же порядке, что и SQL-слой: всё по возрастанию номеров. Вызывать
// под мьютексом.
func (m *memStore) hydrate(t *models.Tournament) models.Tournament {
	hydrated := *t

	for _, table := range m.tables {
		if table.TournamentID == t.ID {
			hydrated.Tables = append(hydrated.Tables, *table)
		}
	}
	sort.Slice(hydrated.Tables, func(i, j int) bool {
		return hydrated.Tables[i].Number < hydrated.Tables[j].Number
	})

	for _, round := range m.rounds {
		if round.TournamentID != t.ID {
			continue
		}
		copied := *round
		copied.Seats = nil
		for _, seat := range m.seats {
			if seat.RoundID == round.ID {
				copied.Seats = append(copied.Seats, seat)
			}
		}
		sort.Slice(copied.Seats, func(i, j int) bool {
			if copied.Seats[i].TableNumber != copied.Seats[j].TableNumber {
				return copied.Seats[i].TableNumber < copied.Seats[j].TableNumber
			}
			return copied.Seats[i].Position < copied.Seats[j].Position
		})
		hydrated.Rounds = append(hydrated.Rounds, copied)
	}
	sort.Slice(hydrated.Rounds, func(i, j int) bool {
		return hydrated.Rounds[i].Number < hydrated.Rounds[j].Number
	})

	return hydrated
}

type txManager struct{ *memStore }

func (m txManager) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type tournamentRepo struct{ *memStore }

func (r tournamentRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.ExternalID == t.ExternalID {
			existing.Name = t.Name
			t.ID = existing.ID
			t.Ended = existing.Ended
			return nil
		}
	}
	t.ID = r.id()
	stored := *t
	r.tournaments = append(r.tournaments, &stored)
	return nil
}

func (r tournamentRepo) GetByExternalID(ctx context.Context, exec repositories.SQLExecutor, externalID int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.ExternalID == externalID {
			copied := *t
			return &copied, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r tournamentRepo) GetHydratedByExternalID(ctx context.Context, externalID int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.ExternalID == externalID {
			hydrated := r.hydrate(t)
			return &hydrated, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r tournamentRepo) ListAll(ctx context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		result = append(result, *t)
	}
	return result, nil
}

func (r tournamentRepo) ListActive(ctx context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if !t.Ended {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (r tournamentRepo) ListActiveHydrated(ctx context.Context) ([]models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Tournament, 0)
	for _, t := range r.tournaments {
		if !t.Ended {
			result = append(result, r.hydrate(t))
		}
	}
	return result, nil
}

func (r tournamentRepo) SetEnded(ctx context.Context, externalID int, ended bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.ExternalID == externalID {
			t.Ended = ended
			return nil
		}
	}
	return repositories.ErrTournamentNotFound
}

type roundRepo struct{ *memStore }

func (r roundRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, round *models.Round) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rounds {
		if existing.TournamentID == round.TournamentID && existing.Number == round.Number {
			// start_time дозаполняется только из NULL, как COALESCE в SQL.
			if existing.StartTime == nil {
				existing.StartTime = round.StartTime
			}
			round.ID = existing.ID
			round.StartTime = existing.StartTime
			return nil
		}
	}
	round.ID = r.id()
	stored := *round
	r.rounds = append(r.rounds, &stored)
	return nil
}

func (r roundRepo) SetStartTime(ctx context.Context, tournamentID int, number int, startTime *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID && round.Number == number {
			round.StartTime = startTime
			return nil
		}
	}
	return repositories.ErrRoundNotFound
}

func (r roundRepo) GetByNumber(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, number int) (*models.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID && round.Number == number {
			copied := *round
			return &copied, nil
		}
	}
	return nil, repositories.ErrRoundNotFound
}

type tableRepo struct{ *memStore }

func (r tableRepo) Ensure(ctx context.Context, exec repositories.SQLExecutor, table *models.TournamentTable) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tables {
		if existing.TournamentID == table.TournamentID && existing.Number == table.Number {
			table.ID = existing.ID
			table.Location = existing.Location
			return nil
		}
	}
	table.ID = r.id()
	stored := *table
	r.tables = append(r.tables, &stored)
	return nil
}

func (r tableRepo) SetLocation(ctx context.Context, tournamentID int, number int, location *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, table := range r.tables {
		if table.TournamentID == tournamentID && table.Number == number {
			table.Location = location
			return nil
		}
	}
	r.tables = append(r.tables, &models.TournamentTable{
		ID:           r.id(),
		TournamentID: tournamentID,
		Number:       number,
		Location:     location,
	})
	return nil
}

func (r tableRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.TournamentTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.TournamentTable, 0)
	for _, table := range r.tables {
		if table.TournamentID == tournamentID {
			result = append(result, *table)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

type seatRepo struct{ *memStore }

func (r seatRepo) ReplaceForRoundTable(ctx context.Context, exec repositories.SQLExecutor, roundID int, tableNumber int, seats []models.SeatAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]models.SeatAssignment, 0, len(r.seats))
	for _, seat := range r.seats {
		if seat.RoundID == roundID && seat.TableNumber == tableNumber {
			continue
		}
		kept = append(kept, seat)
	}
	r.seats = kept
	for _, seat := range seats {
		// Тот же уникальный индекс, что и в схеме: слот стола занят не
		// больше одного раза.
		for _, existing := range r.seats {
			if existing.RoundID == roundID && existing.TableNumber == tableNumber && existing.Position == seat.Position {
				return fmt.Errorf("duplicate seat position %d for round %d table %d", seat.Position, roundID, tableNumber)
			}
		}
		seat.ID = r.id()
		seat.RoundID = roundID
		seat.TableNumber = tableNumber
		r.seats = append(r.seats, seat)
	}
	return nil
}

func (r seatRepo) ListGomafiaIDsByTournament(ctx context.Context, tournamentID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roundIDs := make(map[int]bool)
	for _, round := range r.rounds {
		if round.TournamentID == tournamentID {
			roundIDs[round.ID] = true
		}
	}
	seen := make(map[int]bool)
	result := make([]int, 0)
	for _, seat := range r.seats {
		if roundIDs[seat.RoundID] && !seen[seat.GomafiaID] {
			seen[seat.GomafiaID] = true
			result = append(result, seat.GomafiaID)
		}
	}
	return result, nil
}

type playerRepo struct{ *memStore }

func (r playerRepo) Save(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.players {
		if existing.TelegramID == player.TelegramID {
			existing.GomafiaProfileURL = player.GomafiaProfileURL
			existing.GomafiaID = player.GomafiaID
			player.ID = existing.ID
			return nil
		}
	}
	player.ID = r.id()
	stored := *player
	r.players = append(r.players, &stored)
	return nil
}

func (r playerRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, player := range r.players {
		if player.TelegramID == telegramID {
			copied := *player
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r playerRepo) ListByGomafiaID(ctx context.Context, gomafiaID int) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Player, 0)
	for _, player := range r.players {
		if player.GomafiaID == gomafiaID {
			result = append(result, *player)
		}
	}
	return result, nil
}

func (r playerRepo) ListAll(ctx context.Context) ([]models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]models.Player, 0, len(r.players))
	for _, player := range r.players {
		result = append(result, *player)
	}
	return result, nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

type fakeFetcher struct {
	response *gomafia.TournamentResponse
	err      error
}

func (f *fakeFetcher) GetTournament(ctx context.Context, externalID int) (*gomafia.TournamentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeSender struct {
	mu       sync.Mutex
	messages map[int64][]string
	failFor  map[int64]error
}

func newFakeSender() *fakeSender {
	return &fakeSender{messages: make(map[int64][]string), failFor: make(map[int64]error)}
}

func (f *fakeSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[chatID]; ok {
		return err
	}
	f.messages[chatID] = append(f.messages[chatID], text)
	return nil
}

func (f *fakeSender) sentTo(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[chatID]
}
