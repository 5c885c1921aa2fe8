package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

type SOSRepository struct {
	db *pgxpool.Pool
}

func NewSOSRepository(db *pgxpool.Pool) service.SOSRepository {
	return &SOSRepository{db: db}
}

const sosSelect = `
	SELECT
		s.id,
		s.user_id,
		u.username,
		s.latitude,
		s.longitude,
		s.message,
		s.status,
		s.created_at
	FROM sos_alerts s
	JOIN users u ON u.id = s.user_id`

// Create stores the alert with a server-side timestamp and reads it back
// joined with the owner's username.
func (r *SOSRepository) Create(ctx context.Context, alert *models.SOSAlert) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO sos_alerts (id, user_id, latitude, longitude, message, status)
			VALUES ($1, $2, $3, $4, $5, $6);`,
			alert.ID,
			alert.UserID,
			alert.Latitude,
			alert.Longitude,
			alert.Message,
			alert.Status,
		)
		if err != nil {
			return translate(err, "failed to create sos alert")
		}
		stored, err := scanSOS(tx.QueryRow(ctx, sosSelect+` WHERE s.id = $1;`, alert.ID))
		if err != nil {
			return translate(err, "failed to read back sos alert %s", alert.ID)
		}
		*alert = *stored
		return nil
	})
}

func (r *SOSRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.SOSStatus) (*models.SOSAlert, error) {
	var alert *models.SOSAlert
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE sos_alerts SET status = $1 WHERE id = $2;`, status, id)
		if err != nil {
			return translate(err, "failed to update sos alert %s", id)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("sos alert with id %s: %w", id, models.ErrNotFound)
		}
		alert, err = scanSOS(tx.QueryRow(ctx, sosSelect+` WHERE s.id = $1;`, id))
		return translate(err, "failed to read back sos alert %s", id)
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// List returns alerts with the given status, newest first.
func (r *SOSRepository) List(ctx context.Context, status models.SOSStatus) ([]*models.SOSAlert, error) {
	rows, err := r.db.Query(ctx, sosSelect+` WHERE s.status = $1 ORDER BY s.created_at DESC;`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list sos alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*models.SOSAlert, 0)
	for rows.Next() {
		alert, err := scanSOS(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sos alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return alerts, nil
}

func scanSOS(row rowScanner) (*models.SOSAlert, error) {
	alert := &models.SOSAlert{}
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.Username,
		&alert.Latitude,
		&alert.Longitude,
		&alert.Message,
		&alert.Status,
		&alert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return alert, nil
}
