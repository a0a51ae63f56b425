package gomafia

// DTO ответа gomafia. Любое поле может отсутствовать — источник отдает
// неполные данные штатно, поэтому все значащие поля указательные.

type TournamentResponse struct {
	Tournament TournamentInfo `json:"tournament"`
	Games      []Game         `json:"games"`
}

type TournamentInfo struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`
}

// Game — одна игра: номер тура (gameNum), номер стола (tableNum) и
// рассадка за столом.
type Game struct {
	GameNum  *int          `json:"gameNum"`
	TableNum *int          `json:"tableNum"`
	Table    []TablePlayer `json:"table"`
}

type TablePlayer struct {
	ID    *int `json:"id"`
	Place *int `json:"place"`
}
