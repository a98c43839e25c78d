package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, event_id, name, description, venue, event_date,
		max_capacity, confirmed_count, queued_count, registration_deadline,
		seat_policy, is_active, created_at, updated_at`

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	FindNextActive(ctx context.Context) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)

	// Ledger methods：容量計數器只能透過以下條件式 UPDATE 變動，
	// 且必須與對應的 registration 寫入在同一個 transaction 內。
	ConditionalReserve(ctx context.Context, tx pgx.Tx, id int) (int, bool, error)
	ReleaseConfirmed(ctx context.Context, tx pgx.Tx, id int) error
	IncrementQueued(ctx context.Context, tx pgx.Tx, id int) error
	DecrementQueued(ctx context.Context, tx pgx.Tx, id int) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func scanEvent(row pgx.Row, event *model.Event) error {
	return row.Scan(
		&event.ID,
		&event.EventID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.EventDate,
		&event.MaxCapacity,
		&event.ConfirmedCount,
		&event.QueuedCount,
		&event.RegistrationDeadline,
		&event.SeatPolicy,
		&event.IsActive,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := fmt.Sprintf(`
		INSERT INTO events (event_id, name, description, venue, event_date,
			max_capacity, registration_deadline, seat_policy)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, eventColumns)

	err := scanEvent(r.pool.QueryRow(ctx, query,
		event.EventID, event.Name, event.Description, event.Venue, event.EventDate,
		event.MaxCapacity, event.RegistrationDeadline, event.SeatPolicy,
	), event)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		ORDER BY created_at DESC
	`, eventColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		if err := scanEvent(rows, &event); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE id = $1
	`, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, id), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE event_id = $1
	`, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, eventID), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

// FindNextActive 最近一場開放中的活動，token 查詢未指定活動時使用
func (r *EventRepositoryImpl) FindNextActive(ctx context.Context) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE is_active = TRUE
		ORDER BY event_date ASC NULLS LAST
		LIMIT 1
	`, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *params.Name)
		argPos++
	}

	if params.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *params.Description)
		argPos++
	}

	if params.Venue != nil {
		sets = append(sets, fmt.Sprintf("venue = $%d", argPos))
		args = append(args, *params.Venue)
		argPos++
	}

	if params.EventDate != nil {
		sets = append(sets, fmt.Sprintf("event_date = $%d", argPos))
		args = append(args, *params.EventDate)
		argPos++
	}

	if params.RegistrationDeadline != nil {
		sets = append(sets, fmt.Sprintf("registration_deadline = $%d", argPos))
		args = append(args, *params.RegistrationDeadline)
		argPos++
	}

	if params.SeatPolicy != nil {
		sets = append(sets, fmt.Sprintf("seat_policy = $%d", argPos))
		args = append(args, *params.SeatPolicy)
		argPos++
	}

	if params.IsActive != nil {
		sets = append(sets, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *params.IsActive)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, eventColumns)

	var event model.Event
	err := scanEvent(r.pool.QueryRow(ctx, query, args...), &event)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

// ConditionalReserve 原子性保留一個名額：只有 confirmed_count < max_capacity
// 時遞增才會成功，檢查與寫入是同一個 UPDATE。回傳遞增後的 confirmed_count，
// 供 sequential 座位分配使用；客滿時回傳 ok = false，不視為錯誤。
// 同一 transaction 內後續的座位查詢受該 row lock 保護，
// 不會與其他確認請求交錯。
func (r *EventRepositoryImpl) ConditionalReserve(ctx context.Context, tx pgx.Tx, id int) (int, bool, error) {
	query := `
		UPDATE events
		SET confirmed_count = confirmed_count + 1, updated_at = $2
		WHERE id = $1 AND confirmed_count < max_capacity
		RETURNING confirmed_count
	`

	var confirmedCount int
	err := tx.QueryRow(ctx, query, id, time.Now().UTC()).Scan(&confirmedCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			// 客滿：降級到候補的正常路徑
			return 0, false, nil
		}
		return 0, false, err
	}

	return confirmedCount, true, nil
}

// ReleaseConfirmed 釋放一個已確認名額。confirmed_count 已為 0 表示
// 帳本與報名紀錄脫鉤，回傳 ErrInternalServerError。
func (r *EventRepositoryImpl) ReleaseConfirmed(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE events
		SET confirmed_count = confirmed_count - 1, updated_at = $2
		WHERE id = $1 AND confirmed_count > 0
	`

	result, err := tx.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInternalServerError
	}

	return nil
}

func (r *EventRepositoryImpl) IncrementQueued(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE events
		SET queued_count = queued_count + 1, updated_at = $2
		WHERE id = $1
	`

	result, err := tx.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *EventRepositoryImpl) DecrementQueued(ctx context.Context, tx pgx.Tx, id int) error {
	query := `
		UPDATE events
		SET queued_count = queued_count - 1, updated_at = $2
		WHERE id = $1 AND queued_count > 0
	`

	result, err := tx.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrInternalServerError
	}

	return nil
}
