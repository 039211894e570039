package treatments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/animals"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/withdrawal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// AlertRaiser es lo único que este módulo necesita del de alertas.
type AlertRaiser interface {
	Raise(ctx context.Context, in alerts.RaiseInput) (alerts.Alert, error)
}

// Service implementa el flujo de logging de prescripciones: calcula el
// retiro con las tablas regulatorias, persiste el tratamiento y levanta
// la alerta "pending" que arranca el tracking de compliance.
type Service struct {
	repo   Repository
	alerts AlertRaiser
	now    func() time.Time
}

func NewService(repo Repository, raiser AlertRaiser) *Service {
	return &Service{
		repo:   repo,
		alerts: raiser,
		now:    time.Now,
	}
}

type LogInput struct {
	DrugName       string
	Dosage         string
	Reason         string
	AdministeredAt time.Time // zero => ahora
}

// Log registra la administración contra un animal ya autorizado por el
// handler (por eso recibe el Animal completo y no un id).
func (s *Service) Log(ctx context.Context, animal animals.Animal, in LogInput) (Treatment, error) {
	drug := strings.TrimSpace(in.DrugName)
	if drug == "" {
		return Treatment{}, ErrInvalidInput
	}
	if strings.TrimSpace(animal.ID) == "" || strings.TrimSpace(animal.OwnerUserID) == "" {
		return Treatment{}, ErrInvalidInput
	}

	now := s.now()
	administered := in.AdministeredAt
	if administered.IsZero() {
		administered = now
	}
	if administered.After(now) {
		// no se registran tratamientos futuros
		return Treatment{}, ErrInvalidInput
	}

	days := withdrawal.ComputeDays(drug, in.Dosage, string(animal.Species))
	until := administered.AddDate(0, 0, days)

	t := Treatment{
		ID:              uuid.NewString(),
		AnimalID:        animal.ID,
		UserID:          animal.OwnerUserID,
		DrugName:        drug,
		Dosage:          strings.TrimSpace(in.Dosage),
		Reason:          strings.TrimSpace(in.Reason),
		AdministeredAt:  administered,
		WithdrawalDays:  days,
		WithdrawalUntil: until,
		CreatedAt:       now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return Treatment{}, err
	}

	// best-effort: el tratamiento ya quedó persistido; si la alerta
	// falla, el check de compliance la repone en el próximo ciclo.
	_, _ = s.alerts.Raise(ctx, alerts.RaiseInput{
		UserID:  animal.OwnerUserID,
		Type:    alerts.TypePending,
		Title:   "Withdrawal period active",
		Message: fmt.Sprintf("%s treated with %s: products withheld for %d days", animal.TagNumber, drug, days),
		ActionRequired: fmt.Sprintf("Withhold milk and meat until %s",
			until.Format("2006-01-02")),
		CanDismiss: true,
		AnimalID:   animal.ID,
		AnimalTag:  animal.TagNumber,
	})

	return t, nil
}

func (s *Service) ListByAnimal(ctx context.Context, animalID string) ([]Treatment, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByAnimal(ctx, animalID)
}
