package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
)

// ArrangementService отвечает на вопрос "где я сижу": читающие запросы
// поверх хранилища, без какой-либо записи.
type ArrangementService struct {
	tournamentRepo repositories.TournamentRepository
}

func NewArrangementService(tournamentRepo repositories.TournamentRepository) *ArrangementService {
	return &ArrangementService{tournamentRepo: tournamentRepo}
}

// FindArrangement собирает места игрока по всем активным турнирам.
// Результат сгруппирован по турнирам, внутри турнира туры идут по
// возрастанию. Пустой срез — не ошибка: игрок просто нигде не рассажен.
func (s *ArrangementService) FindArrangement(ctx context.Context, gomafiaID int) ([]models.Arrangement, error) {
	tournaments, err := s.tournamentRepo.ListActiveHydrated(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tournaments: %w", err)
	}

	arrangements := make([]models.Arrangement, 0)
	for _, tournament := range tournaments {
		locations := tableLocations(tournament.Tables)
		for _, round := range tournament.Rounds {
			seat, ok := seatOf(round, gomafiaID)
			if !ok {
				continue
			}
			arrangements = append(arrangements, models.Arrangement{
				TournamentName: tournament.Name,
				RoundNumber:    round.Number,
				TableNumber:    seat.TableNumber,
				Position:       seat.Position,
				TableLocation:  locations[seat.TableNumber],
			})
		}
	}
	return arrangements, nil
}

// FindSeat возвращает стол и слот игрока в конкретном туре; nil без
// ошибки, если игрок в этом туре не рассажен.
func (s *ArrangementService) FindSeat(ctx context.Context, tournamentExternalID int, roundNumber int, gomafiaID int) (*models.SeatRef, error) {
	tournament, err := s.tournamentRepo.GetHydratedByExternalID(ctx, tournamentExternalID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	for _, round := range tournament.Rounds {
		if round.Number != roundNumber {
			continue
		}
		if seat, ok := seatOf(round, gomafiaID); ok {
			return &models.SeatRef{TableNumber: seat.TableNumber, Position: seat.Position}, nil
		}
	}
	return nil, nil
}

// seatOf находит факт рассадки игрока в туре. Инвариант хранилища
// гарантирует не больше одного совпадения.
func seatOf(round models.Round, gomafiaID int) (models.SeatAssignment, bool) {
	for _, seat := range round.Seats {
		if seat.GomafiaID == gomafiaID {
			return seat, true
		}
	}
	return models.SeatAssignment{}, false
}

func tableLocations(tables []models.TournamentTable) map[int]*string {
	locations := make(map[int]*string, len(tables))
	for _, table := range tables {
		locations[table.Number] = table.Location
	}
	return locations
}
