package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/106shubh/JeevanDhara-sub000/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// debugUserHeader inyecta el usuario en modo dev (sin verifier).
const debugUserHeader = "X-Debug-User-ID"

// AuthContext resuelve la identidad del request y la deja en contexto.
// Nunca corta el request: si no hay claims, cada handler decide si
// exige auth (el preview de retiro y /health son públicos).
//
// Con verifier nil corre en modo dev y acepta X-Debug-User-ID; con
// verifier, solo un Bearer token verificado produce claims.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := resolveClaims(r, verifier); ok {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(debugUserHeader))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		// token inválido => request anónimo; el handler responde 401
		return auth.Claims{}, false
	}
	return claims, true
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
