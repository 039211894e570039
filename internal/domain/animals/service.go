package animals

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	TagNumber string
	Name      string
	Species   string
	Breed     string
	BirthDate *time.Time
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Animal{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.TagNumber) == "" {
		return Animal{}, ErrInvalidInput
	}

	// species estricta: el registro solo acepta especies conocidas,
	// aunque el cálculo de retiro tolere cualquier string con defaults.
	sp := Species(strings.ToLower(strings.TrimSpace(in.Species)))
	if !ValidSpecies(sp) {
		return Animal{}, ErrInvalidInput
	}

	now := s.now()
	a := Animal{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		TagNumber:   strings.TrimSpace(in.TagNumber),
		Name:        strings.TrimSpace(in.Name),
		Species:     sp,
		Breed:       strings.TrimSpace(in.Breed),
		BirthDate:   in.BirthDate,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Animal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// OwnerOf expone el ownerUserID de un animal.
// Evita que otros módulos importen el repo directamente.
func (s *Service) OwnerOf(ctx context.Context, animalID string) (string, error) {
	a, err := s.GetByID(ctx, animalID)
	if err != nil {
		return "", err
	}
	return a.OwnerUserID, nil
}
