package supabase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/106shubh/JeevanDhara-sub000/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

// Verifier implementa auth.AuthVerifier contra GoTrue.
// Se instancia desde main cuando SUPABASE_URL/SUPABASE_ANON_KEY
// están definidos; sin ellos el servicio queda en modo dev.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.GetUser(ctx, token)
	if err != nil {
		// el middleware decide si corta; acá solo se normaliza
		return auth.Claims{}, fmt.Errorf("supabase verify failed: %w", err)
	}

	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		return auth.Claims{}, errors.New("supabase claims missing user id")
	}

	return claims, nil
}
