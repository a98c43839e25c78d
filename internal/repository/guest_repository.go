package repository

import (
	"context"

	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestRepository interface {
	Create(ctx context.Context, guest *model.Guest) (*model.Guest, error)
	Import(ctx context.Context, guests []*model.Guest) (int, int, error)
	List(ctx context.Context) ([]*model.Guest, error)
	FindByID(ctx context.Context, id int) (*model.Guest, error)
	FindByToken(ctx context.Context, token uuid.UUID) (*model.Guest, error)
}

type GuestRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &GuestRepositoryImpl{
		pool: pool,
	}
}

func (r *GuestRepositoryImpl) Create(ctx context.Context, guest *model.Guest) (*model.Guest, error) {
	query := `
		INSERT INTO guests (token, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, token, email, first_name, last_name, is_active, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		guest.Token, guest.Email, guest.FirstName, guest.LastName,
	).Scan(
		&guest.ID,
		&guest.Token,
		&guest.Email,
		&guest.FirstName,
		&guest.LastName,
		&guest.IsActive,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, err
	}
	return guest, nil
}

// Import 批次匯入，email 重複者以 ON CONFLICT 略過
func (r *GuestRepositoryImpl) Import(ctx context.Context, guests []*model.Guest) (int, int, error) {
	query := `
		INSERT INTO guests (token, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`

	imported := 0
	for _, guest := range guests {
		result, err := r.pool.Exec(ctx, query,
			guest.Token, guest.Email, guest.FirstName, guest.LastName,
		)
		if err != nil {
			return imported, len(guests) - imported, err
		}
		if result.RowsAffected() > 0 {
			imported++
		}
	}

	return imported, len(guests) - imported, nil
}

func (r *GuestRepositoryImpl) List(ctx context.Context) ([]*model.Guest, error) {
	query := `
		SELECT id, token, email, first_name, last_name, is_active, created_at, updated_at
		FROM guests
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]*model.Guest, 0)
	for rows.Next() {
		var guest model.Guest
		err := rows.Scan(
			&guest.ID,
			&guest.Token,
			&guest.Email,
			&guest.FirstName,
			&guest.LastName,
			&guest.IsActive,
			&guest.CreatedAt,
			&guest.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		guests = append(guests, &guest)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return guests, nil
}

func (r *GuestRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Guest, error) {
	query := `
		SELECT id, token, email, first_name, last_name, is_active, created_at, updated_at
		FROM guests
		WHERE id = $1
	`

	var guest model.Guest
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&guest.ID,
		&guest.Token,
		&guest.Email,
		&guest.FirstName,
		&guest.LastName,
		&guest.IsActive,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrGuestNotFound
		}
		return nil, err
	}

	return &guest, nil
}

func (r *GuestRepositoryImpl) FindByToken(ctx context.Context, token uuid.UUID) (*model.Guest, error) {
	query := `
		SELECT id, token, email, first_name, last_name, is_active, created_at, updated_at
		FROM guests
		WHERE token = $1
	`

	var guest model.Guest
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&guest.ID,
		&guest.Token,
		&guest.Email,
		&guest.FirstName,
		&guest.LastName,
		&guest.IsActive,
		&guest.CreatedAt,
		&guest.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrGuestNotFound
		}
		return nil, err
	}

	return &guest, nil
}
