package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"round/internal/auth"
	"round/internal/telemetry"
)

const writeTimeout = 5 * time.Second

type clientMessage struct {
	Type    string `json:"type"`
	Scope   string `json:"scope,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
}

// Message is every frame the server sends.
type Message struct {
	Type    string `json:"type"`
	UserID  string `json:"user_id,omitempty"`
	Scope   string `json:"scope,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
	Change  string `json:"change,omitempty"`
	Message string `json:"message,omitempty"`
}

type Server struct {
	Hub            *Hub
	verifier       auth.Verifier
	originPatterns []string
}

func NewServer(hub *Hub, verifier auth.Verifier, originPatterns ...string) *Server {
	return &Server{Hub: hub, verifier: verifier, originPatterns: originPatterns}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			telemetry.WSAuthFailure()
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			telemetry.WSAuthFailure()
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: s.originPatterns,
		})
		if err != nil {
			slog.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "server error")

		sessionID := uuid.NewString()
		events, err := s.Hub.Add(sessionID, claims.Subject)
		if err != nil {
			slog.Error("failed to register websocket session", "error", err)
			conn.Close(websocket.StatusInternalError, "session init failed")
			return
		}
		defer s.Hub.Remove(sessionID)

		telemetry.WSConnectionOpened()
		defer telemetry.WSConnectionClosed()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		if err := write(ctx, conn, Message{Type: "ready", UserID: claims.Subject}); err != nil {
			return
		}

		go s.forward(ctx, cancel, conn, events)

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
					slog.Debug("websocket read ended", "session_id", sessionID, "error", err)
				}
				return
			}

			reply := s.handle(sessionID, data)
			if err := write(ctx, conn, reply); err != nil {
				return
			}
		}
	}
}

func (s *Server) forward(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := write(ctx, conn, msg); err != nil {
				cancel()
				return
			}
			telemetry.WSEventDelivered()
		}
	}
}

func (s *Server) handle(sessionID string, data []byte) Message {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return errorMessage("invalid message")
	}

	subscribe := false
	switch msg.Type {
	case "subscribe":
		subscribe = true
	case "unsubscribe":
	default:
		return errorMessage("unsupported message type")
	}

	reply := Message{Type: msg.Type + "d", Scope: msg.Scope}
	switch msg.Scope {
	case "dashboard":
		if subscribe {
			s.Hub.SubscribeDashboard(sessionID)
		} else {
			s.Hub.UnsubscribeDashboard(sessionID)
		}
	case "asset":
		parsed, err := uuid.Parse(strings.TrimSpace(msg.AssetID))
		if err != nil {
			return errorMessage("asset_id must be a uuid")
		}
		// notifications always carry the canonical lowercase form
		assetID := parsed.String()
		if subscribe {
			s.Hub.SubscribeAsset(sessionID, assetID)
		} else {
			s.Hub.UnsubscribeAsset(sessionID, assetID)
		}
		reply.AssetID = assetID
	default:
		return errorMessage("unsupported scope")
	}
	return reply
}

func errorMessage(message string) Message {
	return Message{Type: "error", Message: message}
}

func write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func requestToken(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return ""
}
