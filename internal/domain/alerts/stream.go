package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
)

// Source es el contrato que el stream exige a su backend:
// query inicial, canal push por usuario y mutación de descarte.
// *Service lo implementa in-process; un adapter remoto podría
// implementarlo contra un backend hosteado.
type Source interface {
	ListActive(ctx context.Context, userID string) ([]Alert, error)
	Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error)
	Dismiss(ctx context.Context, alertID, userID string) error
}

// NotifyLevel es la prioridad de una notificación push al usuario.
type NotifyLevel string

const (
	NotifyHigh   NotifyLevel = "high"
	NotifyMedium NotifyLevel = "medium"
)

type Notification struct {
	Level    NotifyLevel
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier recibe las notificaciones de alto nivel que dispara el
// stream (urgent/warning). La capa de presentación decide cómo
// mostrarlas; acá solo se clasifica prioridad y duración.
type Notifier interface {
	Notify(n Notification)
}

// Duraciones de las notificaciones por tier.
const (
	urgentNotifyDuration  = 10 * time.Second
	warningNotifyDuration = 7 * time.Second
)

// cuánto esperar antes de reintentar tras perder el canal push
const defaultRetryWait = 3 * time.Second

// Stream mantiene la vista viva de alertas activas de un usuario:
// carga inicial, merge de eventos insert/update y descarte confirmado
// por servidor. Una instancia por consumidor montado; cambiar de
// usuario implica Close() + Open() nuevo.
type Stream struct {
	source   Source
	notifier Notifier
	log      logger.Logger
	userID   string

	retryWait time.Duration

	mu     sync.Mutex
	alerts []Alert

	cancel context.CancelFunc
	done   chan struct{}
}

// Open arranca el ciclo Loading→Active del stream.
//
// Con userID vacío (sin sesión) devuelve un stream inerte: lista vacía,
// sin suscripción, Close() no-op. Con usuario, hace la carga inicial de
// forma síncrona (un load fallido degrada a lista vacía, se loguea y no
// se propaga) y deja un goroutine consumiendo el canal push hasta que
// ctx se cancele o se llame Close().
func Open(ctx context.Context, userID string, source Source, notifier Notifier, log logger.Logger) *Stream {
	s := &Stream{
		source:    source,
		notifier:  notifier,
		log:       log,
		userID:    userID,
		retryWait: defaultRetryWait,
		alerts:    make([]Alert, 0),
		done:      make(chan struct{}),
	}

	if userID == "" {
		// Unauthenticated: sin suscripción que cancelar.
		close(s.done)
		return s
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.load(runCtx)
	go s.run(runCtx)

	return s
}

// Close cancela la suscripción push y espera a que el consumer loop
// termine. Idempotente; obligatorio en unmount o cambio de usuario
// para no filtrar eventos de una sesión anterior.
func (s *Stream) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Snapshot devuelve la lista activa actual, newest-first.
func (s *Stream) Snapshot() []Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Grouped particiona la vista actual en los cuatro buckets fijos.
// Es una vista derivada: se recalcula en cada llamada, no es estado.
func (s *Stream) Grouped() map[AlertType][]Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[AlertType][]Alert, len(Types))
	for _, t := range Types {
		out[t] = make([]Alert, 0)
	}
	for _, a := range s.alerts {
		out[a.Type] = append(out[a.Type], a)
	}
	return out
}

// Dismiss pide el descarte al backend y recién con la confirmación
// saca la alerta de la vista local. Si el round-trip falla, la lista
// queda intacta (el usuario puede reintentar) y el error se devuelve.
func (s *Stream) Dismiss(ctx context.Context, alertID string) error {
	if err := s.source.Dismiss(ctx, alertID, s.userID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.alerts {
		if a.ID == alertID {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			break
		}
	}
	return nil
}

// load ejecuta la query inicial (Loading). En fallo degrada a lista
// vacía: un dashboard sin alertas por error transitorio es más seguro
// que una página caída, pero queda logueado para no confundirlo con
// "cero alertas reales".
func (s *Stream) load(ctx context.Context) {
	items, err := s.source.ListActive(ctx, s.userID)
	if err != nil {
		s.log.Error("alert stream: initial load failed, degrading to empty list", map[string]any{
			"user_id": s.userID,
			"error":   err.Error(),
		})
		items = nil
	}

	s.mu.Lock()
	s.alerts = make([]Alert, 0, len(items))
	for _, a := range items {
		if a.IsDismissed {
			continue
		}
		s.alerts = append(s.alerts, a)
	}
	s.mu.Unlock()
}

// run consume el canal push. Si el canal se cierra con el ctx todavía
// vivo (caída del canal), espera retryWait y rehace el ciclo
// Loading→Active completo con una suscripción nueva.
func (s *Stream) run(ctx context.Context) {
	defer close(s.done)

	for {
		events, unsub, err := s.source.Subscribe(ctx, s.userID)
		if err != nil {
			s.log.Warn("alert stream: subscribe failed, will retry", map[string]any{
				"user_id": s.userID,
				"error":   err.Error(),
			})
		} else {
			lost := s.consume(ctx, events, unsub)
			if !lost {
				return
			}
			s.log.Warn("alert stream: push channel lost, resubscribing", map[string]any{
				"user_id": s.userID,
			})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryWait):
		}
		s.load(ctx)
	}
}

// consume procesa eventos hasta cancelación (false) o pérdida del
// canal (true).
func (s *Stream) consume(ctx context.Context, events <-chan Event, unsub func()) bool {
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return true
			}
			s.apply(ev)
		}
	}
}

// apply hace el merge de un evento en la vista local.
//
// Insert: prepend (los inserts siempre son más nuevos que lo cargado,
// el prepend preserva newest-first sin re-sort) + notificación según
// tier. Update: replace por id y filtrado de descartadas; repetir el
// mismo update es un no-op funcional, lo que da idempotencia ante
// entregas duplicadas.
func (s *Stream) apply(ev Event) {
	s.mu.Lock()

	switch ev.Kind {
	case EventInsert:
		if idx := s.indexOf(ev.Alert.ID); idx >= 0 {
			// replay del canal: tratarlo como update para no duplicar
			s.alerts[idx] = ev.Alert
			s.dropDismissed()
			s.mu.Unlock()
			return
		}
		if ev.Alert.IsDismissed {
			s.mu.Unlock()
			return
		}
		s.alerts = append([]Alert{ev.Alert}, s.alerts...)
		s.mu.Unlock()
		s.notify(ev.Alert)
		return

	case EventUpdate:
		if idx := s.indexOf(ev.Alert.ID); idx >= 0 {
			s.alerts[idx] = ev.Alert
		}
		s.dropDismissed()
	}

	s.mu.Unlock()
}

func (s *Stream) indexOf(id string) int {
	for i, a := range s.alerts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// dropDismissed filtra alertas con IsDismissed=true (caller con lock).
func (s *Stream) dropDismissed() {
	out := s.alerts[:0]
	for _, a := range s.alerts {
		if !a.IsDismissed {
			out = append(out, a)
		}
	}
	s.alerts = out
}

// notify dispara la notificación push según tier:
// urgent => alta prioridad ~10s, warning => media ~7s, resto silencioso.
func (s *Stream) notify(a Alert) {
	if s.notifier == nil {
		return
	}
	switch a.Type {
	case TypeUrgent:
		s.notifier.Notify(Notification{
			Level:    NotifyHigh,
			Title:    a.Title,
			Message:  a.Message,
			Duration: urgentNotifyDuration,
		})
	case TypeWarning:
		s.notifier.Notify(Notification{
			Level:    NotifyMedium,
			Title:    a.Title,
			Message:  a.Message,
			Duration: warningNotifyDuration,
		})
	}
}
