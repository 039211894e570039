package treatments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t Treatment) error
	GetByID(ctx context.Context, id string) (Treatment, error)

	// ListByAnimal devuelve tratamientos del animal, administered_at
	// descendente.
	ListByAnimal(ctx context.Context, animalID string) ([]Treatment, error)

	// ListActiveWithdrawals devuelve los tratamientos cuyo período de
	// retiro sigue abierto a la fecha dada (withdrawal_until > asOf),
	// de todos los usuarios. Lo consume el check de compliance.
	ListActiveWithdrawals(ctx context.Context, asOf time.Time) ([]Treatment, error)
}
