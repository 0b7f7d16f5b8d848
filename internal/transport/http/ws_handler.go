package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quizverse-service/internal/app"
	"quizverse-service/internal/domain"
)

// WSHandler streams live leaderboard updates over websockets. Clients get the
// current ranking on connect and a fresh one whenever an attempt on the quiz
// completes.
type WSHandler struct {
	service  *app.AttemptService
	hub      *app.LeaderboardHub
	auth     Authenticator
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.AttemptService, hub *app.LeaderboardHub, auth Authenticator) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		auth:    auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeLeaderboard upgrades the request and follows one quiz's leaderboard.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Authenticate(r); err != nil {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	// Resolve the initial ranking before upgrading so a bad quiz id still
	// gets a plain HTTP status.
	initial, err := h.service.Leaderboard(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, "quiz not found", http.StatusNotFound)
			return
		}
		log.Printf("leaderboard feed %s: %v", quizID, err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.hub.Subscribe(quizID)
	defer cancel()

	// Reader pump: the client sends nothing meaningful; reads only detect
	// disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: initial}); err != nil {
		return
	}
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: update}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
