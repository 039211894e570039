package push

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
	"github.com/106shubh/JeevanDhara-sub000/internal/middleware"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
)

const (
	// tiempo máximo para escribir un frame al peer
	writeWait = 10 * time.Second

	// tiempo máximo sin pong antes de dar por muerta la conexión
	pongWait = 60 * time.Second

	// período de ping; tiene que ser menor que pongWait
	pingPeriod = (pongWait * 9) / 10
)

// AlertFeed es lo que el endpoint necesita del módulo de alertas:
// el canal push scoped por usuario.
type AlertFeed interface {
	Subscribe(ctx context.Context, userID string) (<-chan alerts.Event, func(), error)
}

// Handler expone el canal push por WebSocket en GET /ws/alerts.
// Cada conexión es una suscripción al topic del usuario autenticado;
// cerrar la conexión cancela la suscripción (sin listeners colgados
// entre sesiones).
type Handler struct {
	feed     AlertFeed
	log      logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(feed AlertFeed, log logger.Logger) *Handler {
	return &Handler{
		feed: feed,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// el origin check real vive en el proxy/frontend;
				// acá el token ya scopea los datos
				return true
			},
		},
	}
}

// eventFrame es el wire format del canal: kind + registro completo.
type eventFrame struct {
	Kind  string       `json:"kind"`
	Alert alertPayload `json:"alert"`
}

// alertPayload duplica el shape JSON del handler REST a propósito
// (misma razón que writeJSON por módulo: sin helpers compartidos
// prematuros entre transportes).
type alertPayload struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ActionRequired string    `json:"action_required,omitempty"`
	CanDismiss     bool      `json:"can_dismiss"`
	IsDismissed    bool      `json:"is_dismissed"`
	AnimalID       string    `json:"animal_id,omitempty"`
	AnimalTag      string    `json:"animal_tag,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ServeAlerts hace el upgrade y bombea eventos hasta que el cliente
// cierre o el contexto muera.
func (h *Handler) ServeAlerts(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	events, unsub, err := h.feed.Subscribe(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// el upgrader ya escribió la respuesta de error
		unsub()
		h.log.Warn("ws upgrade failed", map[string]any{
			"user_id": claims.UserID,
			"error":   err.Error(),
		})
		return
	}

	h.log.Info("ws alert subscription opened", map[string]any{"user_id": claims.UserID})

	closed := make(chan struct{})
	go h.readLoop(conn, closed)
	h.writeLoop(conn, events, closed)

	unsub()
	_ = conn.Close()
	h.log.Info("ws alert subscription closed", map[string]any{"user_id": claims.UserID})
}

// readLoop solo existe para procesar pongs y detectar el cierre del
// peer; los mensajes entrantes se descartan.
func (h *Handler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, events <-chan alerts.Event, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return

		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(toFrame(ev)); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func toFrame(ev alerts.Event) eventFrame {
	a := ev.Alert
	return eventFrame{
		Kind: string(ev.Kind),
		Alert: alertPayload{
			ID:             a.ID,
			Type:           string(a.Type),
			Title:          a.Title,
			Message:        a.Message,
			ActionRequired: a.ActionRequired,
			CanDismiss:     a.CanDismiss,
			IsDismissed:    a.IsDismissed,
			AnimalID:       a.AnimalID,
			AnimalTag:      a.AnimalTag,
			CreatedAt:      a.CreatedAt,
		},
	}
}
