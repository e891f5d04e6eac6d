package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/football-tournaments/realtime"
	"github.com/Dosada05/football-tournaments/services"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	auth     services.AuthService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler: пустой allowedOrigins разрешает любой Origin (локальная разработка).
func NewWebSocketHandler(hub *realtime.Hub, auth services.AuthService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		auth:   auth,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs обрабатывает /ws?token=<jwt>&room=<room>.
// Комнаты: user_{id} (только свой id) и age_group_{id}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		unauthorizedResponse(w, r, "token query parameter is required")
		return
	}
	claims, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		unauthorizedResponse(w, r, "invalid or expired token")
		return
	}

	room := r.URL.Query().Get("room")
	if room == "" {
		room = realtime.UserRoom(claims.UserID)
	}
	if !canJoinRoom(claims.UserID, room) {
		errorResponse(w, r, http.StatusForbidden, CodeForbidden, fmt.Sprintf("cannot join room %q", room), nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}

	client := realtime.NewClient(h.hub, conn, room)
	h.hub.Register(r.Context(), client)
	h.logger.DebugContext(r.Context(), "websocket client connected",
		slog.Int("user_id", claims.UserID), slog.String("room", room))

	go client.WritePump()
	client.ReadPump(r.Context())
}

func canJoinRoom(userID int, room string) bool {
	kind, id, ok := realtime.ParseRoom(room)
	if !ok {
		return false
	}
	switch kind {
	case "user":
		return id == userID
	case "age_group":
		return true
	default:
		return false
	}
}
