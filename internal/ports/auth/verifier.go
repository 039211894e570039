package auth

import "context"

// AuthVerifier resuelve un access token a los claims del usuario.
// La implementación de producción habla con GoTrue; sin verifier el
// middleware corre en modo dev (X-Debug-User-ID).
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
