package handlers

import (
	"log"
	"net/http"

	"github.com/CrowderSoup/gamific/services"
	"github.com/gorilla/websocket"
)

// DataHandler serves the account directory and the live board stream.
type DataHandler struct {
	boardService *services.BoardService
	auth         *AuthMiddleware
	hub          *services.Hub
	upgrader     websocket.Upgrader
}

func NewDataHandler(boardService *services.BoardService, auth *AuthMiddleware, hub *services.Hub, allowedOrigins []string) *DataHandler {
	return &DataHandler{
		boardService: boardService,
		auth:         auth,
		hub:          hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// ListUsers returns the users of the caller's account.
func (h *DataHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFrom(r.Context())
	users, err := h.boardService.ListUsers(r.Context(), session)
	if err != nil {
		respondError(w, "listing users", err)
		return
	}
	writeData(w, http.StatusOK, users)
}

// HandleWebSocket upgrades the connection and subscribes it to the board
// events of the caller's account. Browsers cannot set headers on a
// websocket handshake, so the token may also come as ?token=.
func (h *DataHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}
	session, err := h.auth.authenticate(r.Context(), token)
	if err != nil {
		respondError(w, "authenticating websocket", err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &services.Client{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		AccountID: session.AccountID,
		UserID:    session.UserID,
	}
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
