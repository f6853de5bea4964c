// internal/socket/handler.go
package socket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenValidator turns a bearer token into the caller's raw identifier.
type TokenValidator interface {
	Authenticate(tokenString string) (string, error)
}

// Handler handles WebSocket connections
type Handler struct {
	Hub      *Hub
	tokens   TokenValidator
	groups   GroupAccess
	upgrader websocket.Upgrader
}

// NewHandler creates a websocket handler accepting the given origins. An
// empty list accepts any origin. groups gates group room joins.
func NewHandler(hub *Hub, tokens TokenValidator, groups GroupAccess, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Handler{
		Hub:    hub,
		tokens: tokens,
		groups: groups,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// HandleWebSocket upgrades the request. Browsers cannot set headers on a
// websocket handshake, so the token comes from ?token= with the
// Authorization header as fallback.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "No token provided"})
		return
	}

	userID, err := h.tokens.Authenticate(tokenString)
	if err != nil || userID == "" {
		log.WithError(err).Debug("websocket token rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := NewClient(h.Hub, userID, conn)
	client.groups = h.groups

	select {
	case h.Hub.register <- client:
	case <-h.Hub.done:
		conn.Close()
		return
	}

	h.Hub.JoinRoom(client, UserRoom(userID))

	go client.WritePump()
	go client.ReadPump()
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan []byte, 256),
		Rooms:    make(map[string]bool),
		lastPing: time.Now(),
	}
}

func UserRoom(userID string) string {
	return "user:" + userID
}

func GroupRoom(groupID string) string {
	return "group:" + groupID
}
