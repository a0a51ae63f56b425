package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Vyasma-Mafia/maftourbot/gomafia"
	"github.com/Vyasma-Mafia/maftourbot/live"
	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
	"github.com/Vyasma-Mafia/maftourbot/seating"
	"github.com/Vyasma-Mafia/maftourbot/storage"
)

// SyncService — движок реконсиляции: единственная точка записи, через
// которую снапшот внешнего источника вливается в хранилище.
type SyncService struct {
	txm            repositories.TxManager
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	tableRepo      repositories.TableRepository
	seatRepo       repositories.SeatRepository
	fetcher        gomafia.Fetcher
	archive        storage.FileUploader // опционально: архив сырых снапшотов
	hub            *live.Hub            // опционально: live-рассылка после слияния
	logger         *slog.Logger

	// Реконсиляции одного турнира сериализуются; разных — идут параллельно.
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewSyncService(
	txm repositories.TxManager,
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	tableRepo repositories.TableRepository,
	seatRepo repositories.SeatRepository,
	fetcher gomafia.Fetcher,
	archive storage.FileUploader,
	hub *live.Hub,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		txm:            txm,
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		tableRepo:      tableRepo,
		seatRepo:       seatRepo,
		fetcher:        fetcher,
		archive:        archive,
		hub:            hub,
		logger:         logger,
		locks:          make(map[int]*sync.Mutex),
	}
}

// SyncFromSource забирает турнир из gomafia, архивирует сырой ответ,
// нормализует его и вливает в хранилище.
func (s *SyncService) SyncFromSource(ctx context.Context, externalID int) (*models.Tournament, error) {
	resp, err := s.fetcher.GetTournament(ctx, externalID)
	if err != nil {
		return nil, err
	}

	s.archiveRawSnapshot(ctx, externalID, resp)

	snap := seating.BuildSnapshot(externalID, resp.Tournament, resp.Games)
	return s.Reconcile(ctx, snap)
}

// Reconcile вливает снапшот в хранилище одной транзакцией: либо весь
// снапшот, либо ничего. Повтор с тем же снапшотом — no-op по наблюдаемому
// состоянию. Туры и столы, которых нет в снапшоте, не трогаются, поэтому
// частичные синхронизации безопасны.
func (s *SyncService) Reconcile(ctx context.Context, snap models.TournamentSnapshot) (*models.Tournament, error) {
	lock := s.lockFor(snap.ExternalID)
	lock.Lock()
	defer lock.Unlock()

	tournament := &models.Tournament{
		ExternalID: snap.ExternalID,
		Name:       snap.Name,
	}

	err := s.txm.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.tournamentRepo.Upsert(ctx, exec, tournament); err != nil {
			return err
		}

		for _, snapRound := range snap.Rounds {
			// Столы общетурнирные: заводим каждый встреченный номер,
			// расположение существующих столов не трогаем.
			for _, snapTable := range snapRound.Tables {
				table := &models.TournamentTable{
					TournamentID: tournament.ID,
					Number:       snapTable.Number,
				}
				if err := s.tableRepo.Ensure(ctx, exec, table); err != nil {
					return err
				}
			}

			round := &models.Round{
				TournamentID: tournament.ID,
				Number:       snapRound.Number,
			}
			if err := s.roundRepo.Upsert(ctx, exec, round); err != nil {
				return err
			}

			// Игрок встречается в туре не больше одного раза, даже если
			// снапшот посадил его за два стола: выигрывает первое вхождение.
			seenPlayers := make(map[int]bool)
			for _, snapTable := range snapRound.Tables {
				seats := dedupeSeats(snapTable.Seats, seenPlayers)
				if err := s.seatRepo.ReplaceForRoundTable(ctx, exec, round.ID, snapTable.Number, seats); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrReconcileFailed, snap.ExternalID, err)
	}

	hydrated, err := s.tournamentRepo.GetHydratedByExternalID(ctx, snap.ExternalID)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(snap.ExternalID), live.Event{
			Type:    live.EventSeatingUpdated,
			Payload: hydrated,
		})
	}

	return hydrated, nil
}

// dedupeSeats применяет правило "первый выигрывает" к коллизиям слота в
// рамках стола и к повторным появлениям игрока в рамках тура.
func dedupeSeats(seats []models.SnapshotSeat, seenPlayers map[int]bool) []models.SeatAssignment {
	result := make([]models.SeatAssignment, 0, len(seats))
	seenPositions := make(map[int]bool)
	for _, seat := range seats {
		if seenPositions[seat.Position] || seenPlayers[seat.GomafiaID] {
			continue
		}
		seenPositions[seat.Position] = true
		seenPlayers[seat.GomafiaID] = true
		result = append(result, models.SeatAssignment{
			GomafiaID: seat.GomafiaID,
			Position:  seat.Position,
		})
	}
	return result
}

func (s *SyncService) lockFor(externalID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[externalID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[externalID] = lock
	}
	return lock
}

// archiveRawSnapshot сохраняет сырой ответ источника в объектное хранилище.
// Ошибка архивации не прерывает синхронизацию — только пишется в лог.
func (s *SyncService) archiveRawSnapshot(ctx context.Context, externalID int, resp *gomafia.TournamentResponse) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal raw snapshot for archive",
			slog.Int("tournament", externalID), slog.Any("error", err))
		return
	}

	key := fmt.Sprintf("snapshots/%d/%s.json", externalID, time.Now().UTC().Format("20060102T150405Z"))
	if _, err := s.archive.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		s.logger.Error("failed to archive raw snapshot",
			slog.Int("tournament", externalID), slog.String("key", key), slog.Any("error", err))
	}
}
