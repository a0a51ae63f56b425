package handlers

import (
	"net/http"

	"github.com/Vyasma-Mafia/maftourbot/services"
)

// TournamentHandler — чтение турниров и административные правки расписания.
type TournamentHandler struct {
	tournaments *services.TournamentService
	sync        *services.SyncService
}

func NewTournamentHandler(tournaments *services.TournamentService, sync *services.SyncService) *TournamentHandler {
	return &TournamentHandler{
		tournaments: tournaments,
		sync:        sync,
	}
}

func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.ListTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ListActiveTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournaments.ListActiveTournaments(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournaments.GetTournament(r.Context(), externalID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetTournamentTables(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.tournaments.GetTournamentTables(r.Context(), externalID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tables": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SyncTournament подтягивает снапшот из внешнего источника и примиряет
// локальное состояние с ним.
func (h *TournamentHandler) SyncTournament(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.sync.SyncFromSource(r.Context(), externalID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) SetRoundStartTime(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roundNumber, err := getIntFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		StartTime *string `json:"start_time"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.SetRoundStartTime(r.Context(), externalID, roundNumber, input.StartTime); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "round start time updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) SetTableLocation(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tableNumber, err := getIntFromURL(r, "tableNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Location *string `json:"location"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.SetTableLocation(r.Context(), externalID, tableNumber, input.Location); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "table location updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) EndTournament(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournaments.EndTournament(r.Context(), externalID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "tournament ended"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
