package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
)

type AlertsRepo struct {
	db *sql.DB
}

func NewAlertsRepo(db *sql.DB) *AlertsRepo {
	return &AlertsRepo{db: db}
}

func (r *AlertsRepo) Create(ctx context.Context, a alerts.Alert) error {
	// animal_tag no se persiste: sale del join con animals al leer
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (
			id, user_id,
			type, title, message, action_required,
			can_dismiss, is_dismissed,
			animal_id,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		a.ID,
		a.UserID,
		string(a.Type),
		a.Title,
		a.Message,
		a.ActionRequired,
		a.CanDismiss,
		a.IsDismissed,
		toNullString(a.AnimalID),
		a.CreatedAt,
	)
	return err
}

func (r *AlertsRepo) GetByID(ctx context.Context, id string) (alerts.Alert, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return alerts.Alert{}, alerts.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			a.id, a.user_id,
			a.type, a.title, a.message, a.action_required,
			a.can_dismiss, a.is_dismissed,
			a.animal_id, COALESCE(an.tag_number, ''),
			a.created_at
		FROM alerts a
		LEFT JOIN animals an ON an.id = a.animal_id
		WHERE a.id = $1
	`, id)

	a, err := scanAlert(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return alerts.Alert{}, alerts.ErrNotFound
		}
		return alerts.Alert{}, err
	}
	return a, nil
}

func (r *AlertsRepo) ListActiveByUser(ctx context.Context, userID string) ([]alerts.Alert, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			a.id, a.user_id,
			a.type, a.title, a.message, a.action_required,
			a.can_dismiss, a.is_dismissed,
			a.animal_id, COALESCE(an.tag_number, ''),
			a.created_at
		FROM alerts a
		LEFT JOIN animals an ON an.id = a.animal_id
		WHERE a.user_id = $1 AND a.is_dismissed = false
		ORDER BY a.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]alerts.Alert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// Dismiss hace el soft-update scoped por usuario. El predicado incluye
// can_dismiss para que el server sea la última línea de defensa aunque
// la UI esconda el botón. 0 filas afectadas se desambigua con un
// SELECT posterior para devolver el error correcto.
func (r *AlertsRepo) Dismiss(ctx context.Context, id, userID string) error {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" {
		return alerts.ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET is_dismissed = true
		WHERE id = $1 AND user_id = $2 AND can_dismiss = true
	`, id, userID)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var canDismiss bool
	err = r.db.QueryRowContext(ctx, `
		SELECT can_dismiss FROM alerts WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&canDismiss)
	if err == sql.ErrNoRows {
		return alerts.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !canDismiss {
		return alerts.ErrNotDismissible
	}
	// fila visible y descartable pero 0 affected (borrada entre medio):
	// tratarlo como éxito idempotente
	return nil
}

func scanAlert(row rowScanner) (alerts.Alert, error) {
	var a alerts.Alert
	var typ string
	var animalID sql.NullString

	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&typ,
		&a.Title,
		&a.Message,
		&a.ActionRequired,
		&a.CanDismiss,
		&a.IsDismissed,
		&animalID,
		&a.AnimalTag,
		&a.CreatedAt,
	); err != nil {
		return alerts.Alert{}, err
	}

	a.Type = alerts.AlertType(typ)
	if animalID.Valid {
		a.AnimalID = animalID.String
	}
	return a, nil
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
