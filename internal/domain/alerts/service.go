package alerts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/106shubh/JeevanDhara-sub000/internal/platform/bus"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrNotDismissible = errors.New("alert cannot be dismissed")
)

// Service administra el ciclo de vida de alertas: creación (con evento
// insert), listado activo y descarte confirmado (con evento update).
// Implementa Source para los streams de consumidores.
type Service struct {
	repo Repository
	bus  *bus.Bus[Event]
	now  func() time.Time
}

func NewService(repo Repository, b *bus.Bus[Event]) *Service {
	return &Service{
		repo: repo,
		bus:  b,
		now:  time.Now,
	}
}

type RaiseInput struct {
	UserID string

	Type    AlertType
	Title   string
	Message string

	ActionRequired string
	CanDismiss     bool

	AnimalID  string
	AnimalTag string
}

// Raise persiste una alerta nueva y publica el evento insert en el
// topic del usuario. Lo invocan los flujos upstream (logging de
// tratamientos, check de compliance), no el consumidor final.
func (s *Service) Raise(ctx context.Context, in RaiseInput) (Alert, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Alert{}, ErrInvalidInput
	}
	if !ValidType(in.Type) {
		return Alert{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Alert{}, ErrInvalidInput
	}

	a := Alert{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           in.Type,
		Title:          strings.TrimSpace(in.Title),
		Message:        strings.TrimSpace(in.Message),
		ActionRequired: strings.TrimSpace(in.ActionRequired),
		CanDismiss:     in.CanDismiss,
		IsDismissed:    false,
		AnimalID:       strings.TrimSpace(in.AnimalID),
		AnimalTag:      strings.TrimSpace(in.AnimalTag),
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Alert{}, err
	}

	s.bus.Publish(a.UserID, Event{Kind: EventInsert, Alert: a})
	return a, nil
}

// ListActive devuelve la vista activa (no descartada) del usuario,
// newest-first.
func (s *Service) ListActive(ctx context.Context, userID string) ([]Alert, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListActiveByUser(ctx, userID)
}

// Dismiss marca la alerta como descartada. Primero confirma contra el
// repo; solo después publica el evento update para que otros streams
// abiertos del usuario la saquen de su vista. Si el repo falla, no se
// publica nada: el estado local de los consumidores queda intacto.
func (s *Service) Dismiss(ctx context.Context, alertID, userID string) error {
	alertID = strings.TrimSpace(alertID)
	userID = strings.TrimSpace(userID)
	if alertID == "" || userID == "" {
		return ErrInvalidInput
	}

	if err := s.repo.Dismiss(ctx, alertID, userID); err != nil {
		return err
	}

	// best-effort: si el fetch posterior falla, el descarte ya está
	// persistido; los otros streams convergen en su próximo reload.
	if a, err := s.repo.GetByID(ctx, alertID); err == nil {
		s.bus.Publish(userID, Event{Kind: EventUpdate, Alert: a})
	}
	return nil
}

// Subscribe abre un canal de eventos scoped al usuario.
// El ctx queda en la firma para implementaciones remotas de Source;
// el bus in-process cancela solo vía la func devuelta.
func (s *Service) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, ErrInvalidInput
	}
	ch, cancel := s.bus.Subscribe(userID)
	return ch, cancel, nil
}
