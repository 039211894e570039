package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/treatments"
)

type TreatmentsRepo struct {
	db *sql.DB
}

func NewTreatmentsRepo(db *sql.DB) *TreatmentsRepo {
	return &TreatmentsRepo{db: db}
}

func (r *TreatmentsRepo) Create(ctx context.Context, t treatments.Treatment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO treatments (
			id, animal_id, user_id,
			drug_name, dosage, reason,
			administered_at,
			withdrawal_days, withdrawal_until,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		t.ID,
		t.AnimalID,
		t.UserID,
		t.DrugName,
		t.Dosage,
		t.Reason,
		t.AdministeredAt,
		t.WithdrawalDays,
		t.WithdrawalUntil,
		t.CreatedAt,
	)
	return err
}

func (r *TreatmentsRepo) GetByID(ctx context.Context, id string) (treatments.Treatment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return treatments.Treatment{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, animal_id, user_id,
			drug_name, dosage, reason,
			administered_at,
			withdrawal_days, withdrawal_until,
			created_at
		FROM treatments
		WHERE id = $1
	`, id)

	var t treatments.Treatment
	if err := row.Scan(
		&t.ID,
		&t.AnimalID,
		&t.UserID,
		&t.DrugName,
		&t.Dosage,
		&t.Reason,
		&t.AdministeredAt,
		&t.WithdrawalDays,
		&t.WithdrawalUntil,
		&t.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return treatments.Treatment{}, ErrNotFound
		}
		return treatments.Treatment{}, err
	}

	return t, nil
}

func (r *TreatmentsRepo) ListByAnimal(ctx context.Context, animalID string) ([]treatments.Treatment, error) {
	animalID = strings.TrimSpace(animalID)
	if animalID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, animal_id, user_id,
			drug_name, dosage, reason,
			administered_at,
			withdrawal_days, withdrawal_until,
			created_at
		FROM treatments
		WHERE animal_id = $1
		ORDER BY administered_at DESC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTreatments(rows)
}

func (r *TreatmentsRepo) ListActiveWithdrawals(ctx context.Context, asOf time.Time) ([]treatments.Treatment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, animal_id, user_id,
			drug_name, dosage, reason,
			administered_at,
			withdrawal_days, withdrawal_until,
			created_at
		FROM treatments
		WHERE withdrawal_until > $1
		ORDER BY withdrawal_until ASC
	`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTreatments(rows)
}

func scanTreatments(rows *sql.Rows) ([]treatments.Treatment, error) {
	out := make([]treatments.Treatment, 0)
	for rows.Next() {
		var t treatments.Treatment
		if err := rows.Scan(
			&t.ID,
			&t.AnimalID,
			&t.UserID,
			&t.DrugName,
			&t.Dosage,
			&t.Reason,
			&t.AdministeredAt,
			&t.WithdrawalDays,
			&t.WithdrawalUntil,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
