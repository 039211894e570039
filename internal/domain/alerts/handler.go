package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/106shubh/JeevanDhara-sub000/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/alerts", func(ar chi.Router) {
		ar.Get("/", listAlertsHandler(svc))
		ar.Get("/grouped", listGroupedHandler(svc))
		ar.Post("/{alertID}/dismiss", dismissAlertHandler(svc))
	})
}

type alertResponse struct {
	ID             string    `json:"id"`
	Type           AlertType `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	ActionRequired string    `json:"action_required,omitempty"`
	CanDismiss     bool      `json:"can_dismiss"`
	AnimalID       string    `json:"animal_id,omitempty"`
	AnimalTag      string    `json:"animal_tag,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type dismissResponse struct {
	Status string `json:"status"`
}

// listAlertsHandler devuelve la vista activa del usuario, newest-first.
// @Summary Lista alertas activas del usuario autenticado
func listAlertsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListActive(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]alertResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAlertResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listGroupedHandler particiona la lista activa en los cuatro buckets
// fijos. Es la misma vista derivada que computa el stream, expuesta
// para consumidores que solo hacen polling.
func listGroupedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListActive(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make(map[AlertType][]alertResponse, len(Types))
		for _, t := range Types {
			out[t] = make([]alertResponse, 0)
		}
		for _, a := range items {
			out[a.Type] = append(out[a.Type], toAlertResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// dismissAlertHandler ejecuta el descarte server-confirmed.
// El éxito y el fallo son respuestas inequívocas (200 con status
// explícito vs 4xx/5xx), nunca un parcial interpretable como éxito.
func dismissAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		alertID := chi.URLParam(r, "alertID")
		err := svc.Dismiss(r.Context(), alertID, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "alert not found", http.StatusNotFound)
			case errors.Is(err, ErrNotDismissible):
				http.Error(w, "alert cannot be dismissed", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, dismissResponse{Status: "dismissed"})
	}
}

func toAlertResponse(a Alert) alertResponse {
	return alertResponse{
		ID:             a.ID,
		Type:           a.Type,
		Title:          a.Title,
		Message:        a.Message,
		ActionRequired: a.ActionRequired,
		CanDismiss:     a.CanDismiss,
		AnimalID:       a.AnimalID,
		AnimalTag:      a.AnimalTag,
		CreatedAt:      a.CreatedAt,
	}
}

// writeJSON se duplica por módulo a propósito (igual que en animals y
// treatments) para no crear helpers compartidos antes de tiempo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
