package treatments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/animals"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/withdrawal"
	"github.com/106shubh/JeevanDhara-sub000/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, animalsSvc *animals.Service) {
	r.Route("/animals/{animalID}/treatments", func(tr chi.Router) {
		tr.Post("/", logTreatmentHandler(svc, animalsSvc))
		tr.Get("/", listTreatmentsHandler(svc, animalsSvc))
	})

	// preview del cálculo para el formulario de registro;
	// no persiste nada
	r.Get("/withdrawal/preview", previewWithdrawalHandler())
}

type logTreatmentRequest struct {
	DrugName       string `json:"drug_name"`
	Dosage         string `json:"dosage"`
	Reason         string `json:"reason"`
	AdministeredAt string `json:"administered_at"` // RFC3339 opcional
}

type treatmentResponse struct {
	ID              string    `json:"id"`
	AnimalID        string    `json:"animal_id"`
	DrugName        string    `json:"drug_name"`
	Dosage          string    `json:"dosage"`
	Reason          string    `json:"reason"`
	AdministeredAt  time.Time `json:"administered_at"`
	WithdrawalDays  int       `json:"withdrawal_days"`
	WithdrawalUntil time.Time `json:"withdrawal_until"`
	CreatedAt       time.Time `json:"created_at"`
}

type previewResponse struct {
	DrugName string `json:"drug_name"`
	Species  string `json:"species"`
	Dosage   string `json:"dosage"`
	Days     int    `json:"days"`
}

// @Summary Registra una administración de antimicrobiano
func logTreatmentHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		animal, err := animalsSvc.GetByID(r.Context(), animalID)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if animal.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req logTreatmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var administered time.Time
		if strings.TrimSpace(req.AdministeredAt) != "" {
			t, err := time.Parse(time.RFC3339, req.AdministeredAt)
			if err != nil {
				http.Error(w, "administered_at must be RFC3339", http.StatusBadRequest)
				return
			}
			administered = t
		}

		t, err := svc.Log(r.Context(), animal, LogInput{
			DrugName:       req.DrugName,
			Dosage:         req.Dosage,
			Reason:         req.Reason,
			AdministeredAt: administered,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toTreatmentResponse(t))
	}
}

func listTreatmentsHandler(svc *Service, animalsSvc *animals.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		animalID := chi.URLParam(r, "animalID")
		owner, err := animalsSvc.OwnerOf(r.Context(), animalID)
		if err != nil {
			http.Error(w, "animal not found", http.StatusNotFound)
			return
		}
		if owner != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByAnimal(r.Context(), animalID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]treatmentResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTreatmentResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// previewWithdrawalHandler expone el cálculo puro por query params.
// No requiere auth: no toca datos, solo tablas fijas.
func previewWithdrawalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		drug := q.Get("drug")
		dosage := q.Get("dosage")
		species := q.Get("species")

		writeJSON(w, http.StatusOK, previewResponse{
			DrugName: drug,
			Species:  species,
			Dosage:   dosage,
			Days:     withdrawal.ComputeDays(drug, dosage, species),
		})
	}
}

func toTreatmentResponse(t Treatment) treatmentResponse {
	return treatmentResponse{
		ID:              t.ID,
		AnimalID:        t.AnimalID,
		DrugName:        t.DrugName,
		Dosage:          t.Dosage,
		Reason:          t.Reason,
		AdministeredAt:  t.AdministeredAt,
		WithdrawalDays:  t.WithdrawalDays,
		WithdrawalUntil: t.WithdrawalUntil,
		CreatedAt:       t.CreatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en alerts/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
