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

type ResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) service.ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `id, type, name, latitude, longitude, description, contact, capacity, current_load, status, created_at`

func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (id, type, name, latitude, longitude, description, contact, capacity, current_load, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at;
	`
	err := r.db.QueryRow(ctx, query,
		resource.ID,
		resource.Type,
		resource.Name,
		resource.Latitude,
		resource.Longitude,
		resource.Description,
		resource.Contact,
		resource.Capacity,
		resource.CurrentLoad,
		resource.Status,
	).Scan(&resource.CreatedAt)
	return translate(err, "failed to create resource")
}

// UpdateLoad locks the row, checks the new load against the stored capacity
// and writes it within one transaction.
func (r *ResourceRepository) UpdateLoad(ctx context.Context, id uuid.UUID, load int) (*models.Resource, error) {
	var resource *models.Resource
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var capacity int
		err := tx.QueryRow(ctx, `SELECT capacity FROM resources WHERE id = $1 FOR UPDATE;`, id).Scan(&capacity)
		if err != nil {
			return translate(err, "resource with id %s", id)
		}
		if load > capacity {
			return models.NewValidationError("current_load", "cannot exceed capacity %d", capacity)
		}
		query := `UPDATE resources SET current_load = $1 WHERE id = $2 RETURNING ` + resourceColumns + `;`
		resource, err = scanResource(tx.QueryRow(ctx, query, load, id))
		return translate(err, "failed to update load of resource %s", id)
	})
	if err != nil {
		return nil, err
	}
	return resource, nil
}

// ListOperational returns operational resources, optionally of one type,
// newest first.
func (r *ResourceRepository) ListOperational(ctx context.Context, resourceType string) ([]*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources
		WHERE status = 'operational' AND ($1::text = '' OR type = $1)
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query, resourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := make([]*models.Resource, 0)
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		resources = append(resources, resource)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return resources, nil
}

func scanResource(row rowScanner) (*models.Resource, error) {
	resource := &models.Resource{}
	err := row.Scan(
		&resource.ID,
		&resource.Type,
		&resource.Name,
		&resource.Latitude,
		&resource.Longitude,
		&resource.Description,
		&resource.Contact,
		&resource.Capacity,
		&resource.CurrentLoad,
		&resource.Status,
		&resource.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return resource, nil
}
