package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/chat-registration/internal/domain"
)

// RegistrationLogEntry records one registration attempt for reconciliation.
type RegistrationLogEntry struct {
	ID         string
	EventID    string
	RequestID  string
	CustomerID string
	FirstName  string
	LastName   string
	Status     domain.RegistrationStatus
	FailedStep *domain.RegistrationStep
	Error      *string
	CreatedAt  time.Time
}

// RegistrationLogRepository defines persistence access for registration attempts.
type RegistrationLogRepository interface {
	Create(ctx context.Context, entry *RegistrationLogEntry) error
}

type registrationLogRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationLogRepository returns a Postgres-backed implementation.
func NewRegistrationLogRepository(pool *pgxpool.Pool) RegistrationLogRepository {
	return &registrationLogRepository{pool: pool}
}

func (r *registrationLogRepository) Create(ctx context.Context, entry *RegistrationLogEntry) error {
	const query = `
        INSERT INTO registration_log (event_id, request_id, customer_id, first_name, last_name, status, failed_step, error)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (event_id) DO NOTHING
        RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		entry.EventID,
		entry.RequestID,
		entry.CustomerID,
		entry.FirstName,
		entry.LastName,
		entry.Status,
		entry.FailedStep,
		entry.Error,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil
	}
	return err
}
