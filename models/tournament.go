package models

import "time"

// Tournament — сохраненный турнир. ExternalID — натуральный ключ из gomafia,
// Name перезаписывается при каждой синхронизации.
type Tournament struct {
	ID         int       `json:"id" db:"id"`
	ExternalID int       `json:"external_id" db:"external_id"`
	Name       string    `json:"name" db:"name"`
	Ended      bool      `json:"ended" db:"ended"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Заполняются только при полной гидрации.
	Rounds []Round           `json:"rounds,omitempty" db:"-"`
	Tables []TournamentTable `json:"tables,omitempty" db:"-"`
}

// Round — тур турнира. StartTime хранится как свободный текст,
// заполняется администратором; синхронизация его не затирает.
type Round struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	Number       int     `json:"number" db:"number"`
	StartTime    *string `json:"start_time,omitempty" db:"start_time"`

	Seats []SeatAssignment `json:"seats,omitempty" db:"-"`
}

// TournamentTable — стол турнира. Нумерация столов сквозная для всего
// турнира: один и тот же номер в разных турах — один физический стол.
// Location задается только администратором.
type TournamentTable struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	Number       int     `json:"number" db:"number"`
	Location     *string `json:"location,omitempty" db:"location"`
}

// SeatAssignment — факт "в туре R за столом N игрок P занимает слот S".
// Для покрытых синхронизацией (тур, стол) факты полностью заменяются.
type SeatAssignment struct {
	ID          int `json:"id" db:"id"`
	RoundID     int `json:"round_id" db:"round_id"`
	TableNumber int `json:"table_number" db:"table_number"`
	GomafiaID   int `json:"gomafia_id" db:"gomafia_id"`
	Position    int `json:"position" db:"position"`
}
