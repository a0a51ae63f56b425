// Package bot — телеграм-интерфейс участника: регистрация по ссылке на
// профиль gomafia и запрос собственной рассадки.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vyasma-Mafia/maftourbot/models"
	"github.com/Vyasma-Mafia/maftourbot/services"
	"github.com/Vyasma-Mafia/maftourbot/telegram"
)

const pollTimeoutSeconds = 30

const (
	startMessage = "Привет! Я бот для уведомлений о турнирах по спортивной мафии.\n" +
		"Чтобы получать уведомления, зарегистрируйтесь с помощью команды:\n" +
		"/register https://gomafia.pro/stats/YOUR_ID"

	helpMessage = "Доступные команды:\n" +
		"/start - Начать работу с ботом\n" +
		"/register [ссылка] - Зарегистрироваться, указав ссылку на ваш профиль gomafia\n" +
		"/arrangement - Получить информацию о вашей рассадке во всех активных турнирах\n" +
		"/help - Показать эту справку"

	notRegisteredMessage = "Вы не зарегистрированы. Используйте команду /register для регистрации."
	registeredMessage    = "Регистрация сохранена. Теперь вы будете получать уведомления о рассадке."
	badProfileMessage    = "Не получилось разобрать ссылку. Пример: /register https://gomafia.pro/stats/12345"
	noArrangementMessage = "Информация о вашей рассадке не найдена. Возможно, вы не участвуете ни в одном активном турнире."
	internalErrorMessage = "Произошла ошибка. Пожалуйста, попробуйте позже."
)

// API — используемая ботом часть Telegram Bot API.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

type Bot struct {
	api          API
	players      *services.PlayerService
	arrangements *services.ArrangementService
	logger       *slog.Logger
}

func New(api API, players *services.PlayerService, arrangements *services.ArrangementService, logger *slog.Logger) *Bot {
	return &Bot{
		api:          api,
		players:      players,
		arrangements: arrangements,
		logger:       logger,
	}
}

// Run крутит long polling до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("failed to poll telegram updates", slog.Any("error", err))
			time.Sleep(5 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	command, arg := splitCommand(msg.Text)

	var reply string
	switch command {
	case "/start":
		reply = startMessage
	case "/help":
		reply = helpMessage
	case "/register":
		reply = b.handleRegister(ctx, chatID, arg)
	case "/arrangement":
		reply = b.handleArrangement(ctx, chatID)
	default:
		return
	}

	if err := b.api.SendMessage(ctx, chatID, reply); err != nil {
		b.logger.Error("failed to send bot reply",
			slog.Int64("chat_id", chatID), slog.String("command", command), slog.Any("error", err))
	}
}

func (b *Bot) handleRegister(ctx context.Context, chatID int64, profileURL string) string {
	if _, err := b.players.Register(ctx, chatID, profileURL); err != nil {
		if errors.Is(err, services.ErrInvalidProfileURL) {
			return badProfileMessage
		}
		b.logger.Error("failed to register player",
			slog.Int64("chat_id", chatID), slog.Any("error", err))
		return internalErrorMessage
	}
	return registeredMessage
}

func (b *Bot) handleArrangement(ctx context.Context, chatID int64) string {
	player, err := b.players.FindByTelegramID(ctx, chatID)
	if err != nil {
		if errors.Is(err, services.ErrPlayerNotFound) {
			return notRegisteredMessage
		}
		b.logger.Error("failed to look up player",
			slog.Int64("chat_id", chatID), slog.Any("error", err))
		return internalErrorMessage
	}

	arrangements, err := b.arrangements.FindArrangement(ctx, player.GomafiaID)
	if err != nil {
		b.logger.Error("failed to resolve arrangement",
			slog.Int("gomafia_id", player.GomafiaID), slog.Any("error", err))
		return internalErrorMessage
	}
	if len(arrangements) == 0 {
		return noArrangementMessage
	}
	return renderArrangement(arrangements)
}

// renderArrangement собирает ответ на /arrangement: по блоку на турнир,
// внутри — туры по возрастанию (порядок обеспечивает резолвер).
func renderArrangement(arrangements []models.Arrangement) string {
	var b strings.Builder
	currentTournament := ""
	for _, a := range arrangements {
		if a.TournamentName != currentTournament {
			if currentTournament != "" {
				b.WriteString("\n")
			}
			currentTournament = a.TournamentName
			fmt.Fprintf(&b, "*%s*\n", a.TournamentName)
		}
		fmt.Fprintf(&b, "Тур %d: Стол %d, слот %d", a.RoundNumber, a.TableNumber, a.Position)
		if a.TableLocation != nil && strings.TrimSpace(*a.TableLocation) != "" {
			fmt.Fprintf(&b, " (%s)", *a.TableLocation)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func splitCommand(text string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", ""
	}
	command := fields[0]
	// Команды в группах приходят как /command@botname.
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	return command, arg
}
