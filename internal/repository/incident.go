package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_response_system/internal/models"
	"github.com/shenikar/disaster_response_system/internal/service"
)

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

const incidentColumns = `
	id,
	type,
	latitude,
	longitude,
	description,
	image_path,
	audio_path,
	reported_by,
	reported_at,
	urgency,
	status,
	verification_count,
	version`

// Create создает новую запись об инциденте в бд и заполняет время, счетчик и версию
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (id, type, latitude, longitude, description, image_path, audio_path, reported_by, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING reported_at, verification_count, version;
	`
	err := r.db.QueryRow(ctx, query,
		incident.ID,
		incident.Type,
		incident.Latitude,
		incident.Longitude,
		incident.Description,
		incident.ImagePath,
		incident.AudioPath,
		incident.ReportedBy,
		incident.Urgency,
		incident.Status,
	).Scan(&incident.ReportedAt, &incident.VerificationCount, &incident.Version)
	return translate(err, "failed to create incident")
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "incident with id %s", id)
	}
	return incident, nil
}

// IncrementVerification увеличивает счетчик одним запросом, поэтому
// параллельные подтверждения не теряются. Каждое обновление повышает version.
func (r *IncidentRepository) IncrementVerification(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		UPDATE incidents SET verification_count = verification_count + 1, version = version + 1
		WHERE id = $1
		RETURNING ` + incidentColumns + `;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "failed to verify incident %s", id)
	}
	return incident, nil
}

func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.IncidentStatus) (*models.Incident, error) {
	query := `
		UPDATE incidents SET status = $1, version = version + 1
		WHERE id = $2
		RETURNING ` + incidentColumns + `;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, status, id))
	if err != nil {
		return nil, translate(err, "failed to update status of incident %s", id)
	}
	return incident, nil
}

// List возвращает инциденты по непустым полям фильтра, сначала новые
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.Urgency != "" {
		add("urgency = $%d", filter.Urgency)
	}
	if filter.ReportedFrom != nil {
		add("reported_at >= $%d", *filter.ReportedFrom)
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + incidentColumns + ` FROM incidents`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY reported_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

func (r *IncidentRepository) CountByStatus(ctx context.Context, status models.IncidentStatus) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM incidents WHERE status = $1;`, status).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}
	return count, nil
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	incident := &models.Incident{}
	err := row.Scan(
		&incident.ID,
		&incident.Type,
		&incident.Latitude,
		&incident.Longitude,
		&incident.Description,
		&incident.ImagePath,
		&incident.AudioPath,
		&incident.ReportedBy,
		&incident.ReportedAt,
		&incident.Urgency,
		&incident.Status,
		&incident.VerificationCount,
		&incident.Version,
	)
	if err != nil {
		return nil, err
	}
	return incident, nil
}

func incidentKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// Кэш инцидента хранится в hash вместе с версией. setIfNewer заменяет запись
// только строго более новой версией: читатель со строкой, прочитанной до
// параллельного обновления, не перезапишет запись писателя.
var setIfNewer = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// GetIncidentFromCache возвращает nil, nil при промахе кэша
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.HGet(ctx, incidentKey(id), "data").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент, если в кэше нет той же или более новой версии
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	err = setIfNewer.Run(ctx, r.redisClient,
		[]string{incidentKey(incident.ID)},
		incident.Version, val, r.cacheTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}
