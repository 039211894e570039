package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/treatments"
)

type treatmentRepo struct {
	mu   sync.RWMutex
	byID map[string]treatments.Treatment
}

func NewTreatmentsRepo() treatments.Repository {
	return &treatmentRepo{
		byID: make(map[string]treatments.Treatment),
	}
}

func (r *treatmentRepo) Create(ctx context.Context, t treatments.Treatment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.ID == "" {
		return errors.New("treatment id required")
	}
	if _, exists := r.byID[t.ID]; exists {
		return errors.New("treatment already exists")
	}
	r.byID[t.ID] = t
	return nil
}

func (r *treatmentRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return treatments.Treatment{}, ErrNotFound
	}
	return t, nil
}

func (r *treatmentRepo) ListByAnimal(ctx context.Context, animalID string) ([]treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.byID {
		if t.AnimalID == animalID {
			out = append(out, t)
		}
	}

	// administered_at desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		return out[i].AdministeredAt.After(out[j].AdministeredAt)
	})

	return out, nil
}

func (r *treatmentRepo) ListActiveWithdrawals(ctx context.Context, asOf time.Time) ([]treatments.Treatment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]treatments.Treatment, 0)
	for _, t := range r.byID {
		if t.WithdrawalUntil.After(asOf) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].WithdrawalUntil.Before(out[j].WithdrawalUntil)
	})

	return out, nil
}
