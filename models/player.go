package models

import "time"

// Player — зарегистрированный через Telegram участник.
// TelegramID уникален: повторная регистрация с тем же чатом
// перепривязывает профиль gomafia, а не создает дубликат.
type Player struct {
	ID                int       `json:"id" db:"id"`
	TelegramID        int64     `json:"telegram_id" db:"telegram_id"`
	GomafiaProfileURL string    `json:"gomafia_profile_url" db:"gomafia_profile_url"`
	GomafiaID         int       `json:"gomafia_id" db:"gomafia_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
