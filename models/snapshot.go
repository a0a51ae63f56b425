package models

// TournamentSnapshot — нормализованный срез рассадки турнира, построенный
// маппером из плоского списка игр внешнего источника. Туры отсортированы
// по номеру, столы внутри тура — по номеру стола.
type TournamentSnapshot struct {
	ExternalID int             `json:"external_id"`
	Name       string          `json:"name"`
	Rounds     []SnapshotRound `json:"rounds"`
}

type SnapshotRound struct {
	Number int             `json:"number"`
	Tables []SnapshotTable `json:"tables"`
}

// SnapshotTable со списком посадок. Пустой Seats — легитимное состояние:
// стол известен до того, как за него посадили хоть одного игрока.
type SnapshotTable struct {
	Number int            `json:"number"`
	Seats  []SnapshotSeat `json:"seats"`
}

type SnapshotSeat struct {
	GomafiaID int `json:"gomafia_id"`
	Position  int `json:"position"`
}
