package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
)

type alertRepo struct {
	mu   sync.RWMutex
	byID map[string]alerts.Alert
}

func NewAlertsRepo() alerts.Repository {
	return &alertRepo{
		byID: make(map[string]alerts.Alert),
	}
}

func (r *alertRepo) Create(ctx context.Context, a alerts.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		return errors.New("alert id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("alert already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *alertRepo) GetByID(ctx context.Context, id string) (alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return alerts.Alert{}, alerts.ErrNotFound
	}
	return a, nil
}

func (r *alertRepo) ListActiveByUser(ctx context.Context, userID string) ([]alerts.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]alerts.Alert, 0)
	for _, a := range r.byID {
		if a.UserID != userID || a.IsDismissed {
			continue
		}
		out = append(out, a)
	}

	// created_at desc, invariante de la vista activa
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *alertRepo) Dismiss(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != userID {
		// no revelar existencia de alertas ajenas
		return alerts.ErrNotFound
	}
	if !a.CanDismiss {
		return alerts.ErrNotDismissible
	}

	// idempotente: re-descartar una descartada no es error
	a.IsDismissed = true
	r.byID[id] = a
	return nil
}
