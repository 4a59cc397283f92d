package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tbourn/pedidos-backend/internal/domain"
	"github.com/tbourn/pedidos-backend/internal/services"
)

// Close reasons sent with code 1008.
const (
	reasonInvalidToken = "Token inválido"
	reasonInactiveUser = "Usuario inválido o inactivo"
	reasonForbidden    = "Permisos insuficientes"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxInbound = 4096
)

// Authenticator resolves an access token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// WSServer serves the dashboard websocket endpoint.
type WSServer struct {
	hub      *Hub
	auth     Authenticator
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewWSServer returns a handler bound to hub. allowedOrigins empty accepts
// any origin; otherwise the Origin header must match one entry or be absent.
func NewWSServer(hub *Hub, auth Authenticator, allowedOrigins []string, logger zerolog.Logger) *WSServer {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSServer{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		log: logger.With().Str("component", "ws").Logger(),
	}
}

type inbound struct {
	Type string `json:"type"`
}

// ServeHTTP upgrades the request and runs the session. The token comes from
// the "token" query parameter; authentication happens after the upgrade so
// rejections reach the client as close code 1008.
func (s *WSServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	user, reason := s.authorize(r.Context(), r.URL.Query().Get("token"))
	if user == nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		return
	}

	connID := s.hub.Register(user.ID, user.Role, conn)
	defer s.hub.Unregister(user.ID, connID)

	name := user.Email
	if user.FullName != nil && *user.FullName != "" {
		name = *user.FullName
	}
	// The hub may write concurrently once registered; go through it.
	s.hub.SendToConn(r.Context(), user.ID, connID, map[string]any{
		"type":      "connection_established",
		"message":   "Conectado a WebSocket de pedidos",
		"user_id":   user.ID,
		"user_name": name,
	})

	conn.SetReadLimit(maxInbound)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Uint("user_id", user.ID).Msg("websocket closed")
			}
			return
		}
		var cmd inbound
		if json.Unmarshal(data, &cmd) != nil {
			continue
		}
		if reply := replyTo(cmd); reply != nil {
			s.hub.SendToConn(r.Context(), user.ID, connID, reply)
		}
	}
}

func (s *WSServer) authorize(ctx context.Context, token string) (*domain.User, string) {
	if token == "" || s.auth == nil {
		return nil, reasonInvalidToken
	}
	u, err := s.auth.Authenticate(ctx, token)
	switch {
	case errors.Is(err, services.ErrInactiveUser):
		return nil, reasonInactiveUser
	case err != nil || u == nil:
		return nil, reasonInvalidToken
	}
	if !u.IsActive {
		return nil, reasonInactiveUser
	}
	if !u.Role.IsStaff() {
		return nil, reasonForbidden
	}
	return u, ""
}

func replyTo(cmd inbound) any {
	switch cmd.Type {
	case "ping":
		return map[string]string{"type": "pong"}
	case "subscribe":
		return map[string]any{"type": "subscribed", "events": domain.SubscribableEvents()}
	}
	return nil
}

func (s *WSServer) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(DefaultWriteWait)); err != nil {
				return
			}
		}
	}
}
