package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Vyasma-Mafia/maftourbot/live"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var errMissingRoom = errors.New("tournamentID is required")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Оверлей и админка живут на других origin.
		return true
	},
}

// ServeWs подключает клиента к комнате турнира для live-обновлений рассадки.
func ServeWs(hub *live.Hub, w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "tournamentID")
	if roomID == "" {
		badRequestResponse(w, r, errMissingRoom)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &live.Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
