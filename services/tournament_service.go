package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/Vyasma-Mafia/maftourbot/live"
	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
)

// TournamentService — административная поверхность: листинги и sticky-поля
// (расположение стола, время начала тура), которые синхронизация обязана
// сохранять.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	roundRepo      repositories.RoundRepository
	tableRepo      repositories.TableRepository
	hub            *live.Hub // опционально
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	roundRepo repositories.RoundRepository,
	tableRepo repositories.TableRepository,
	hub *live.Hub,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		roundRepo:      roundRepo,
		tableRepo:      tableRepo,
		hub:            hub,
	}
}

func (s *TournamentService) GetTournament(ctx context.Context, externalID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetHydratedByExternalID(ctx, externalID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return tournament, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.ListAll(ctx)
}

func (s *TournamentService) ListActiveTournaments(ctx context.Context) ([]models.Tournament, error) {
	return s.tournamentRepo.ListActive(ctx)
}

func (s *TournamentService) GetTournamentTables(ctx context.Context, externalID int) ([]models.TournamentTable, error) {
	tournament, err := s.tournamentRepo.GetByExternalID(ctx, nil, externalID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return s.tableRepo.ListByTournament(ctx, nil, tournament.ID)
}

// SetTableLocation — явная правка администратора, действует всегда и
// переживает любые последующие синхронизации.
func (s *TournamentService) SetTableLocation(ctx context.Context, externalID int, tableNumber int, location *string) error {
	tournament, err := s.tournamentRepo.GetByExternalID(ctx, nil, externalID)
	if err != nil {
		return s.mapNotFound(err)
	}
	if err := s.tableRepo.SetLocation(ctx, tournament.ID, tableNumber, location); err != nil {
		return err
	}
	s.broadcast(externalID, live.EventScheduleUpdated)
	return nil
}

// SetRoundStartTime — явная правка администратора; nil сбрасывает время.
func (s *TournamentService) SetRoundStartTime(ctx context.Context, externalID int, roundNumber int, startTime *string) error {
	tournament, err := s.tournamentRepo.GetByExternalID(ctx, nil, externalID)
	if err != nil {
		return s.mapNotFound(err)
	}
	if err := s.roundRepo.SetStartTime(ctx, tournament.ID, roundNumber, startTime); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}
	s.broadcast(externalID, live.EventScheduleUpdated)
	return nil
}

func (s *TournamentService) EndTournament(ctx context.Context, externalID int) error {
	if err := s.tournamentRepo.SetEnded(ctx, externalID, true); err != nil {
		return s.mapNotFound(err)
	}
	return nil
}

func (s *TournamentService) mapNotFound(err error) error {
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

func (s *TournamentService) broadcast(externalID int, eventType string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(strconv.Itoa(externalID), live.Event{Type: eventType})
}
