package handlers

import (
	"net/http"

	"github.com/Vyasma-Mafia/maftourbot/services"
)

// NotificationHandler — отправка уведомлений участникам турнира.
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) NotifyRound(w http.ResponseWriter, r *http.Request) {
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

	delivered, err := h.notifications.NotifyRound(r.Context(), externalID, roundNumber)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"delivered": delivered}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	externalID, err := getIntFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	delivered, err := h.notifications.BroadcastToTournament(r.Context(), externalID, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"delivered": delivered}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
