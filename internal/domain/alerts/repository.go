package alerts

import "context"

type Repository interface {
	Create(ctx context.Context, a Alert) error
	GetByID(ctx context.Context, id string) (Alert, error)

	// ListActiveByUser devuelve alertas no descartadas del usuario,
	// ordenadas created_at descendente (más nueva primero), con el
	// tag del animal asociado resuelto si existe.
	ListActiveByUser(ctx context.Context, userID string) ([]Alert, error)

	// Dismiss marca is_dismissed=true, scoped por usuario además del id
	// (defensa en profundidad contra descartes cross-user).
	// Devuelve ErrNotFound si no hay fila visible para ese usuario y
	// ErrNotDismissible si la alerta existe pero can_dismiss es false.
	Dismiss(ctx context.Context, id, userID string) error
}
