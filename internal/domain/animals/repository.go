package animals

import "context"

type Repository interface {
	Create(ctx context.Context, a Animal) error
	GetByID(ctx context.Context, id string) (Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error)
}
