package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

type ShelterRepository struct {
	db *pgxpool.Pool
}

func NewShelterRepository(db *pgxpool.Pool) service.ShelterRepository {
	return &ShelterRepository{db: db}
}

const shelterColumns = `
	id,
	name,
	description,
	capacity,
	current_occupancy,
	contact,
	status,
	latitude,
	longitude,
	created_by,
	created_at,
	updated_at`

// querier is the part of pgxpool.Pool and pgx.Tx used by the shelter helpers.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Create stores the shelter and its resource lines in one transaction.
func (r *ShelterRepository) Create(ctx context.Context, shelter *models.Shelter) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO shelters (name, description, capacity, contact, status, latitude, longitude, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, current_occupancy, created_at;
		`
		err := tx.QueryRow(ctx, query,
			shelter.Name,
			shelter.Description,
			shelter.Capacity,
			shelter.Contact,
			shelter.Status,
			shelter.Latitude,
			shelter.Longitude,
			shelter.CreatedBy,
		).Scan(&shelter.ID, &shelter.CurrentOccupancy, &shelter.CreatedAt)
		if err != nil {
			return translate(err, "failed to create shelter")
		}
		resources, err := insertShelterResources(ctx, tx, shelter.ID, shelter.Resources)
		if err != nil {
			return err
		}
		shelter.Resources = resources
		return nil
	})
}

func (r *ShelterRepository) GetByID(ctx context.Context, id int64) (*models.Shelter, error) {
	return getShelter(ctx, r.db, id, false)
}

// List returns shelters ordered by name. An empty status returns all of them.
func (r *ShelterRepository) List(ctx context.Context, status models.ShelterStatus) ([]*models.Shelter, error) {
	query := `SELECT ` + shelterColumns + ` FROM shelters WHERE ($1::text = '' OR status = $1) ORDER BY name, id;`
	rows, err := r.db.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list shelters: %w", err)
	}
	defer rows.Close()

	shelters := make([]*models.Shelter, 0)
	byID := make(map[int64]*models.Shelter)
	ids := make([]int64, 0)
	for rows.Next() {
		shelter, err := scanShelter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shelter row: %w", err)
		}
		shelters = append(shelters, shelter)
		byID[shelter.ID] = shelter
		ids = append(ids, shelter.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	if len(ids) == 0 {
		return shelters, nil
	}

	resources, err := listShelterResources(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for _, res := range resources {
		if s, ok := byID[res.ShelterID]; ok {
			s.Resources = append(s.Resources, res)
		}
	}
	return shelters, nil
}

// Update applies the patch under a row lock. Lowering capacity below the
// current occupancy is rejected. A non-nil resource list replaces the old one.
func (r *ShelterRepository) Update(ctx context.Context, id int64, patch models.ShelterPatch) (*models.Shelter, error) {
	var shelter *models.Shelter
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		current, err := getShelter(ctx, tx, id, true)
		if err != nil {
			return err
		}
		applyShelterPatch(current, patch)
		if current.CurrentOccupancy > current.Capacity {
			return models.NewValidationError("capacity", "cannot be lower than current occupancy %d", current.CurrentOccupancy)
		}

		query := `
			UPDATE shelters SET
				name = $1,
				description = $2,
				capacity = $3,
				contact = $4,
				status = $5,
				latitude = $6,
				longitude = $7,
				updated_at = NOW()
			WHERE id = $8;
		`
		if _, err := tx.Exec(ctx, query,
			current.Name,
			current.Description,
			current.Capacity,
			current.Contact,
			current.Status,
			current.Latitude,
			current.Longitude,
			id,
		); err != nil {
			return translate(err, "failed to update shelter %d", id)
		}

		if patch.Resources != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM shelter_resources WHERE shelter_id = $1;`, id); err != nil {
				return fmt.Errorf("failed to clear resources of shelter %d: %w", id, err)
			}
			if _, err := insertShelterResources(ctx, tx, id, *patch.Resources); err != nil {
				return err
			}
		}

		shelter, err = getShelter(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shelter, nil
}

// UpdateOccupancy sets the occupancy under a row lock, bounded by capacity.
func (r *ShelterRepository) UpdateOccupancy(ctx context.Context, id int64, occupancy int) (*models.Shelter, error) {
	var shelter *models.Shelter
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var capacity int
		err := tx.QueryRow(ctx, `SELECT capacity FROM shelters WHERE id = $1 FOR UPDATE;`, id).Scan(&capacity)
		if err != nil {
			return translate(err, "shelter with id %d", id)
		}
		if occupancy > capacity {
			return models.NewValidationError("occupancy", "cannot exceed capacity %d", capacity)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE shelters SET current_occupancy = $1, updated_at = NOW() WHERE id = $2;`,
			occupancy, id,
		); err != nil {
			return translate(err, "failed to update occupancy of shelter %d", id)
		}
		shelter, err = getShelter(ctx, tx, id, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return shelter, nil
}

func applyShelterPatch(s *models.Shelter, p models.ShelterPatch) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Capacity != nil {
		s.Capacity = *p.Capacity
	}
	if p.Contact != nil {
		s.Contact = *p.Contact
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
}

func getShelter(ctx context.Context, q querier, id int64, lock bool) (*models.Shelter, error) {
	query := `SELECT ` + shelterColumns + ` FROM shelters WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	shelter, err := scanShelter(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "shelter with id %d", id)
	}
	resources, err := listShelterResources(ctx, q, []int64{id})
	if err != nil {
		return nil, err
	}
	shelter.Resources = resources
	return shelter, nil
}

func listShelterResources(ctx context.Context, q querier, ids []int64) ([]*models.ShelterResource, error) {
	rows, err := q.Query(ctx,
		`SELECT id, shelter_id, name, quantity FROM shelter_resources WHERE shelter_id = ANY($1) ORDER BY id;`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelter resources: %w", err)
	}
	defer rows.Close()

	resources := make([]*models.ShelterResource, 0)
	for rows.Next() {
		res := &models.ShelterResource{}
		if err := rows.Scan(&res.ID, &res.ShelterID, &res.Name, &res.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan shelter resource row: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return resources, nil
}

func insertShelterResources(ctx context.Context, tx pgx.Tx, shelterID int64, resources []*models.ShelterResource) ([]*models.ShelterResource, error) {
	stored := make([]*models.ShelterResource, 0, len(resources))
	for _, res := range resources {
		out := &models.ShelterResource{ShelterID: shelterID, Name: res.Name, Quantity: res.Quantity}
		err := tx.QueryRow(ctx,
			`INSERT INTO shelter_resources (shelter_id, name, quantity) VALUES ($1, $2, $3) RETURNING id;`,
			shelterID, res.Name, res.Quantity,
		).Scan(&out.ID)
		if err != nil {
			return nil, translate(err, "failed to add resource %q to shelter %d", res.Name, shelterID)
		}
		stored = append(stored, out)
	}
	return stored, nil
}

func scanShelter(row rowScanner) (*models.Shelter, error) {
	shelter := &models.Shelter{Resources: []*models.ShelterResource{}}
	err := row.Scan(
		&shelter.ID,
		&shelter.Name,
		&shelter.Description,
		&shelter.Capacity,
		&shelter.CurrentOccupancy,
		&shelter.Contact,
		&shelter.Status,
		&shelter.Latitude,
		&shelter.Longitude,
		&shelter.CreatedBy,
		&shelter.CreatedAt,
		&shelter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return shelter, nil
}
