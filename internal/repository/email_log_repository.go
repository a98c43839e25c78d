package repository

import (
	"context"

	"event-rsvp-service/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmailLogRepository interface {
	Create(ctx context.Context, log *model.EmailLog) (*model.EmailLog, error)
	CountByStatus(ctx context.Context, eventID int) (map[string]int, error)
}

type EmailLogRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEmailLogRepository(pool *pgxpool.Pool) EmailLogRepository {
	return &EmailLogRepositoryImpl{
		pool: pool,
	}
}

func (r *EmailLogRepositoryImpl) Create(ctx context.Context, log *model.EmailLog) (*model.EmailLog, error) {
	query := `
		INSERT INTO email_logs (guest_id, event_id, kind, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, guest_id, event_id, kind, status, sent_at
	`

	err := r.pool.QueryRow(ctx, query,
		log.GuestID, log.EventID, log.Kind, log.Status,
	).Scan(
		&log.ID,
		&log.GuestID,
		&log.EventID,
		&log.Kind,
		&log.Status,
		&log.SentAt,
	)
	if err != nil {
		return nil, err
	}

	return log, nil
}

func (r *EmailLogRepositoryImpl) CountByStatus(ctx context.Context, eventID int) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM email_logs
		WHERE event_id = $1
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
