package services

import "errors"

// Общие ошибки сервисного слоя, используемые и в маппинге HTTP.
var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrRoundNotFound      = errors.New("round not found")
	ErrPlayerNotFound     = errors.New("player not found")

	ErrInvalidProfileURL = errors.New("invalid gomafia profile url")
	ErrEmptyMessage      = errors.New("broadcast message must not be empty")

	ErrAuthInvalidCredentials = errors.New("invalid admin credentials")

	// Транзакция синхронизации не закоммитилась; частичных эффектов нет,
	// повтор всего прохода безопасен.
	ErrReconcileFailed = errors.New("failed to reconcile tournament snapshot")
)
