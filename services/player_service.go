package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/repositories"
)

var profileURLPattern = regexp.MustCompile(`^https://gomafia\.pro/stats/(\d+)$`)

// PlayerService — регистрация участников по ссылке на профиль gomafia.
type PlayerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) *PlayerService {
	return &PlayerService{playerRepo: playerRepo}
}

// Register привязывает телеграм-чат к профилю gomafia. Повторная
// регистрация того же чата обновляет привязку, а не создает дубликат.
func (s *PlayerService) Register(ctx context.Context, telegramID int64, profileURL string) (*models.Player, error) {
	matches := profileURLPattern.FindStringSubmatch(profileURL)
	if matches == nil {
		return nil, ErrInvalidProfileURL
	}
	gomafiaID, err := strconv.Atoi(matches[1])
	if err != nil {
		return nil, ErrInvalidProfileURL
	}

	player := &models.Player{
		TelegramID:        telegramID,
		GomafiaProfileURL: profileURL,
		GomafiaID:         gomafiaID,
	}
	if err := s.playerRepo.Save(ctx, nil, player); err != nil {
		return nil, fmt.Errorf("failed to register player: %w", err)
	}
	return player, nil
}

func (s *PlayerService) FindByTelegramID(ctx context.Context, telegramID int64) (*models.Player, error) {
	player, err := s.playerRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}
