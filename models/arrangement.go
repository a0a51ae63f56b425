package models

// Arrangement — место игрока в одном туре одного активного турнира.
type Arrangement struct {
	TournamentName string  `json:"tournament_name"`
	RoundNumber    int     `json:"round_number"`
	TableNumber    int     `json:"table_number"`
	Position       int     `json:"position"`
	TableLocation  *string `json:"table_location,omitempty"`
}

// SeatRef — точечный ответ "стол и слот" для игрока в конкретном туре.
type SeatRef struct {
	TableNumber int `json:"table_number"`
	Position    int `json:"position"`
}

// NotificationTarget — пара (чат доставки, готовый текст уведомления).
type NotificationTarget struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}
