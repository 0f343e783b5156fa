package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin policy already enforced by the CORS middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// changeNotice is what the websocket pushes. It carries no data; the
// client re-reads the snapshot when nudged.
type changeNotice struct {
	Org     string `json:"org"`
	Changed bool   `json:"changed"`
}

// GET /api/orgs/{orgid}/events
// Upgrades to a websocket and pushes a coalesced notice whenever the
// org's snapshot changes.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	if _, err := h.service.Load(r.Context(), orgID); err != nil {
		writeServiceError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}
	defer conn.Close()

	nudges := h.service.Engine().Listen(orgID)
	defer h.service.Engine().Ignore(nudges)

	// reader goroutine: we ignore client messages but need to notice
	// the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case org := <-nudges:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(changeNotice{Org: org, Changed: true}); err != nil {
				log.Printf("websocket write for org %s failed: %v", orgID, err)
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
