package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

type BroadcastRepository struct {
	db *pgxpool.Pool
}

func NewBroadcastRepository(db *pgxpool.Pool) service.BroadcastRepository {
	return &BroadcastRepository{db: db}
}

func (r *BroadcastRepository) Create(ctx context.Context, broadcast *models.Broadcast) error {
	query := `
		INSERT INTO broadcasts (id, sender_id, message, latitude, longitude, radius, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at;
	`
	err := r.db.QueryRow(ctx, query,
		broadcast.ID,
		broadcast.SenderID,
		broadcast.Message,
		broadcast.Latitude,
		broadcast.Longitude,
		broadcast.Radius,
		broadcast.ExpiresAt,
	).Scan(&broadcast.CreatedAt)
	return translate(err, "failed to create broadcast")
}

// ListRecent returns at most limit broadcasts, newest first. Expired
// broadcasts are included.
func (r *BroadcastRepository) ListRecent(ctx context.Context, limit int) ([]*models.Broadcast, error) {
	query := `
		SELECT id, sender_id, message, latitude, longitude, radius, created_at, expires_at
		FROM broadcasts
		ORDER BY created_at DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	defer rows.Close()

	broadcasts := make([]*models.Broadcast, 0, limit)
	for rows.Next() {
		b := &models.Broadcast{}
		if err := rows.Scan(
			&b.ID,
			&b.SenderID,
			&b.Message,
			&b.Latitude,
			&b.Longitude,
			&b.Radius,
			&b.CreatedAt,
			&b.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan broadcast row: %w", err)
		}
		broadcasts = append(broadcasts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return broadcasts, nil
}
