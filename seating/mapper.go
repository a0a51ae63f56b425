// Package seating содержит чистую логику нормализации рассадки:
// преобразование плоского списка игр gomafia в иерархию
// турнир → туры → столы → посадки. Без I/O и без побочных эффектов.
package seating

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/Vyasma-Mafia/maftourbot/gomafia"
	"github.com/Vyasma-Mafia/maftourbot/models"
)

// BuildSnapshot группирует игры по (тур, стол) и собирает нормализованный
// снапшот. Правила:
//   - отсутствующий номер тура или стола трактуется как 0;
//   - записи посадки без id игрока или без номера слота отбрасываются;
//   - игрок учитывается за столом один раз, выигрывает первое вхождение;
//   - игра без единой валидной посадки все равно дает стол (с пустым
//     списком), чтобы администратор мог заранее задать его расположение.
//
// Результат детерминирован и не зависит от порядка игр во входе: туры и
// столы отсортированы по возрастанию номеров.
func BuildSnapshot(externalID int, info gomafia.TournamentInfo, games []gomafia.Game) models.TournamentSnapshot {
	resolvedID := resolveExternalID(externalID, info.ID)
	snap := models.TournamentSnapshot{
		ExternalID: resolvedID,
		Name:       resolveName(resolvedID, info.Title),
	}

	if len(games) == 0 {
		return snap
	}

	// тур -> стол -> посадки, с дедупликацией игроков в рамках стола
	rounds := make(map[int]map[int][]models.SnapshotSeat)
	seen := make(map[int]map[int]map[int]bool)

	for _, game := range games {
		roundNum := intOrZero(game.GameNum)
		tableNum := intOrZero(game.TableNum)

		if rounds[roundNum] == nil {
			rounds[roundNum] = make(map[int][]models.SnapshotSeat)
			seen[roundNum] = make(map[int]map[int]bool)
		}
		if _, ok := rounds[roundNum][tableNum]; !ok {
			rounds[roundNum][tableNum] = []models.SnapshotSeat{}
			seen[roundNum][tableNum] = make(map[int]bool)
		}

		for _, tp := range game.Table {
			if tp.ID == nil || tp.Place == nil {
				continue
			}
			if seen[roundNum][tableNum][*tp.ID] {
				continue
			}
			seen[roundNum][tableNum][*tp.ID] = true
			rounds[roundNum][tableNum] = append(rounds[roundNum][tableNum], models.SnapshotSeat{
				GomafiaID: *tp.ID,
				Position:  *tp.Place,
			})
		}
	}

	roundNumbers := make([]int, 0, len(rounds))
	for n := range rounds {
		roundNumbers = append(roundNumbers, n)
	}
	sort.Ints(roundNumbers)

	for _, roundNum := range roundNumbers {
		tables := rounds[roundNum]
		tableNumbers := make([]int, 0, len(tables))
		for n := range tables {
			tableNumbers = append(tableNumbers, n)
		}
		sort.Ints(tableNumbers)

		round := models.SnapshotRound{Number: roundNum}
		for _, tableNum := range tableNumbers {
			round.Tables = append(round.Tables, models.SnapshotTable{
				Number: tableNum,
				Seats:  tables[tableNum],
			})
		}
		snap.Rounds = append(snap.Rounds, round)
	}

	return snap
}

func resolveExternalID(fallback int, raw *string) int {
	if raw == nil {
		return fallback
	}
	id, err := strconv.Atoi(*raw)
	if err != nil {
		return fallback
	}
	return id
}

func resolveName(externalID int, title *string) string {
	if title != nil && *title != "" {
		return *title
	}
	return fmt.Sprintf("Турнир #%d", externalID)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
