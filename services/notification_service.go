package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSends ограничивает параллелизм доставки уведомлений.
const maxConcurrentSends = 8

// Sender — канал доставки. Реализуется телеграм-клиентом; сервису важен
// только контракт "отправь текст в чат".
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// NotificationService вычисляет адресатов уведомлений о рассадке и
// раздает им готовые тексты. Доставка каждому получателю — изолированная
// единица работы: сбой одного не прерывает остальных и ничего не
// откатывает в хранилище.
type NotificationService struct {
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	seatRepo       repositories.SeatRepository
	sender         Sender
	logger         *slog.Logger
}

func NewNotificationService(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	seatRepo repositories.SeatRepository,
	sender Sender,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		seatRepo:       seatRepo,
		sender:         sender,
		logger:         logger,
	}
}

// TargetsForRound собирает пары (чат, текст) для всех игроков тура.
// Игроки без зарегистрированного телеграма пропускаются — это не ошибка.
// Порядок детерминирован: столы по возрастанию, внутри стола — слоты.
func (s *NotificationService) TargetsForRound(ctx context.Context, tournamentExternalID int, roundNumber int) ([]models.NotificationTarget, error) {
	tournament, err := s.tournamentRepo.GetHydratedByExternalID(ctx, tournamentExternalID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	var round *models.Round
	for i := range tournament.Rounds {
		if tournament.Rounds[i].Number == roundNumber {
			round = &tournament.Rounds[i]
			break
		}
	}
	if round == nil {
		return nil, ErrRoundNotFound
	}

	locations := tableLocations(tournament.Tables)

	targets := make([]models.NotificationTarget, 0)
	for _, seat := range round.Seats {
		text := renderRoundNotification(tournament.Name, round, seat, locations[seat.TableNumber])

		players, err := s.playerRepo.ListByGomafiaID(ctx, seat.GomafiaID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up players for gomafia id %d: %w", seat.GomafiaID, err)
		}
		for _, player := range players {
			targets = append(targets, models.NotificationTarget{
				ChatID: player.TelegramID,
				Text:   text,
			})
		}
	}
	return targets, nil
}

// NotifyRound рассылает уведомления о туре. Возвращает число успешных
// доставок; сбои по отдельным получателям логируются и пропускаются.
func (s *NotificationService) NotifyRound(ctx context.Context, tournamentExternalID int, roundNumber int) (int, error) {
	targets, err := s.TargetsForRound(ctx, tournamentExternalID, roundNumber)
	if err != nil {
		return 0, err
	}
	return s.deliver(ctx, targets), nil
}

// BroadcastToTournament отправляет произвольное сообщение организаторов
// каждому зарегистрированному игроку, у которого есть хоть один факт
// рассадки в турнире.
func (s *NotificationService) BroadcastToTournament(ctx context.Context, tournamentExternalID int, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, ErrEmptyMessage
	}

	tournament, err := s.tournamentRepo.GetByExternalID(ctx, nil, tournamentExternalID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	participantIDs, err := s.seatRepo.ListGomafiaIDsByTournament(ctx, tournament.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournament participants: %w", err)
	}
	participants := make(map[int]bool, len(participantIDs))
	for _, id := range participantIDs {
		participants[id] = true
	}

	players, err := s.playerRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list registered players: %w", err)
	}

	text := renderBroadcast(tournament.Name, message)

	targets := make([]models.NotificationTarget, 0)
	for _, player := range players {
		if !participants[player.GomafiaID] {
			continue
		}
		targets = append(targets, models.NotificationTarget{
			ChatID: player.TelegramID,
			Text:   text,
		})
	}
	return s.deliver(ctx, targets), nil
}

// deliver выполняет веерную отправку. Горутины никогда не возвращают
// ошибку в группу: сбой доставки одному получателю не должен обрывать
// остальных.
func (s *NotificationService) deliver(ctx context.Context, targets []models.NotificationTarget) int {
	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)

	delivered := make(chan int64, len(targets))
	for _, target := range targets {
		target := target
		g.Go(func() error {
			if err := s.sender.SendMessage(ctx, target.ChatID, target.Text); err != nil {
				s.logger.Error("failed to deliver notification",
					slog.Int64("chat_id", target.ChatID), slog.Any("error", err))
				return nil
			}
			delivered <- target.ChatID
			return nil
		})
	}
	_ = g.Wait()
	close(delivered)

	count := 0
	for range delivered {
		count++
	}
	return count
}

func renderRoundNotification(tournamentName string, round *models.Round, seat models.SeatAssignment, location *string) string {
	startTime := "Не указано"
	if round.StartTime != nil && *round.StartTime != "" {
		startTime = *round.StartTime
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎲 *Уведомление о начале тура %d* 🎲\n\n", round.Number)
	fmt.Fprintf(&b, "Турнир: %s\n", tournamentName)
	fmt.Fprintf(&b, "Время начала: %s\n", startTime)
	fmt.Fprintf(&b, "Ваш стол: %d\n", seat.TableNumber)
	fmt.Fprintf(&b, "Слот: %d\n", seat.Position)
	if location != nil && strings.TrimSpace(*location) != "" {
		fmt.Fprintf(&b, "Местоположение: %s\n", *location)
	}
	b.WriteString("\nУдачной игры! 🃏")
	return b.String()
}

func renderBroadcast(tournamentName string, message string) string {
	return fmt.Sprintf("📢 *Сообщение от организаторов турнира \"%s\"*\n\n%s", tournamentName, message)
}
