package repository

import (
	"context"
	"fmt"
	"time"

	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const registrationColumns = `id, guest_id, event_id, status, seat_number,
		requested_at, notes, check_in_status, check_in_time, created_at, updated_at`

type RegistrationRepository interface {
	FindByGuestAndEvent(ctx context.Context, guestID, eventID int) (*model.Registration, error)
	ListAll(ctx context.Context) ([]*model.RegistrationDetail, error)
	ListByGuest(ctx context.Context, guestID int) ([]*model.Registration, error)
	CountByStatus(ctx context.Context, eventID int) (map[string]int, error)
	CheckIn(ctx context.Context, guestID, eventID int, state model.CheckInState) (*model.Registration, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, guestID, eventID int) (*model.Registration, error)
	DeleteReturning(ctx context.Context, tx pgx.Tx, guestID, eventID int) (*model.Registration, error)
	OldestWaitlisted(ctx context.Context, tx pgx.Tx, eventID int, excludeID int) (*model.Registration, error)
	Promote(ctx context.Context, tx pgx.Tx, id int, seatNumber int) (*model.Registration, error)
	UpdateResponse(ctx context.Context, tx pgx.Tx, id int, status model.RSVPStatus, seatNumber *int) (*model.Registration, error)
	TakenSeats(ctx context.Context, tx pgx.Tx, eventID int) ([]int, error)
}

type RegistrationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		pool: pool,
	}
}

func scanRegistration(row pgx.Row, registration *model.Registration) error {
	return row.Scan(
		&registration.ID,
		&registration.GuestID,
		&registration.EventID,
		&registration.Status,
		&registration.SeatNumber,
		&registration.RequestedAt,
		&registration.Notes,
		&registration.CheckInStatus,
		&registration.CheckInTime,
		&registration.CreatedAt,
		&registration.UpdatedAt,
	)
}

// Create 新增報名紀錄。(guest_id, event_id) 的唯一性由資料庫約束保證，
// 最後一刻的重複提交以 unique violation 映射為 ErrAlreadyResponded。
func (r *RegistrationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, registration *model.Registration) (*model.Registration, error) {
	query := fmt.Sprintf(`
		INSERT INTO registrations (guest_id, event_id, status, seat_number, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, registrationColumns)

	err := scanRegistration(tx.QueryRow(ctx, query,
		registration.GuestID, registration.EventID, registration.Status,
		registration.SeatNumber, registration.Notes,
	), registration)
	if err != nil {
		switch violatedConstraint(err) {
		case "registrations_event_seat_key":
			// 座位撞號只會在帳本脫鉤時出現，鎖的順序正常時到不了這裡
			return nil, apperrors.ErrSeatExhausted
		case "":
		default:
			return nil, apperrors.ErrAlreadyResponded
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return registration, nil
}

func (r *RegistrationRepositoryImpl) FindByGuestAndEvent(ctx context.Context, guestID, eventID int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE guest_id = $1 AND event_id = $2
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, query, guestID, eventID), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

func (r *RegistrationRepositoryImpl) FindForUpdate(ctx context.Context, tx pgx.Tx, guestID, eventID int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE guest_id = $1 AND event_id = $2
		FOR UPDATE
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query, guestID, eventID), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// DeleteReturning 刪除並回傳整筆紀錄。兩個併發取消只有一個會拿到 row，
// 另一個收到 ErrRegistrationNotFound，確保計數器不會被釋放兩次。
func (r *RegistrationRepositoryImpl) DeleteReturning(ctx context.Context, tx pgx.Tx, guestID, eventID int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		DELETE FROM registrations
		WHERE guest_id = $1 AND event_id = $2
		RETURNING %s
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query, guestID, eventID), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// OldestWaitlisted 依 requested_at（tie-break 用 id）取最久候補者。
// SKIP LOCKED 讓兩個同時釋出的名額各自鎖到不同的候補者，
// 同一個候補者不會被遞補兩次。excludeID 排除呼叫端自己持有的那筆
// （自己的 row lock 不會被 SKIP LOCKED 擋下），傳 0 表示不排除。
func (r *RegistrationRepositoryImpl) OldestWaitlisted(ctx context.Context, tx pgx.Tx, eventID int, excludeID int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE event_id = $1 AND status = $2 AND id <> $3
		ORDER BY requested_at ASC, id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query, eventID, model.RSVPStatusWaitlisted, excludeID), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, err
	}

	return &registration, nil
}

// Promote 把候補紀錄轉為 confirmed 並寫入座位。WHERE 再驗一次
// status = waitlisted，列已被他人改掉時不會生效。
func (r *RegistrationRepositoryImpl) Promote(ctx context.Context, tx pgx.Tx, id int, seatNumber int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		UPDATE registrations
		SET status = $1, seat_number = $2, updated_at = $3
		WHERE id = $4 AND status = $5
		RETURNING %s
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query,
		model.RSVPStatusConfirmed, seatNumber, time.Now().UTC(),
		id, model.RSVPStatusWaitlisted,
	), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to promote registration: %w", err)
	}

	return &registration, nil
}

func (r *RegistrationRepositoryImpl) UpdateResponse(ctx context.Context, tx pgx.Tx, id int, status model.RSVPStatus, seatNumber *int) (*model.Registration, error) {
	query := fmt.Sprintf(`
		UPDATE registrations
		SET status = $1, seat_number = $2, updated_at = $3
		WHERE id = $4
		RETURNING %s
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(tx.QueryRow(ctx, query,
		status, seatNumber, time.Now().UTC(), id,
	), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}

	return &registration, nil
}

// TakenSeats 同一 transaction 內查詢已佔用座位，供座位分配使用
func (r *RegistrationRepositoryImpl) TakenSeats(ctx context.Context, tx pgx.Tx, eventID int) ([]int, error) {
	query := `
		SELECT seat_number
		FROM registrations
		WHERE event_id = $1 AND status = $2 AND seat_number IS NOT NULL
	`

	rows, err := tx.Query(ctx, query, eventID, model.RSVPStatusConfirmed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]int, 0)
	for rows.Next() {
		var seat int
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (r *RegistrationRepositoryImpl) ListAll(ctx context.Context) ([]*model.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.guest_id, r.event_id, r.status, r.seat_number,
		       r.requested_at, r.notes, r.check_in_status, r.check_in_time,
		       r.created_at, r.updated_at,
		       g.email, g.first_name, g.last_name
		FROM registrations r
		JOIN guests g ON g.id = r.guest_id
		ORDER BY r.requested_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]*model.RegistrationDetail, 0)
	for rows.Next() {
		var d model.RegistrationDetail
		err := rows.Scan(
			&d.ID,
			&d.GuestID,
			&d.EventID,
			&d.Status,
			&d.SeatNumber,
			&d.RequestedAt,
			&d.Notes,
			&d.CheckInStatus,
			&d.CheckInTime,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.GuestEmail,
			&d.GuestFirstName,
			&d.GuestLastName,
		)
		if err != nil {
			return nil, err
		}
		details = append(details, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func (r *RegistrationRepositoryImpl) ListByGuest(ctx context.Context, guestID int) ([]*model.Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE guest_id = $1
		ORDER BY requested_at DESC
	`, registrationColumns)

	rows, err := r.pool.Query(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		var registration model.Registration
		if err := scanRegistration(rows, &registration); err != nil {
			return nil, err
		}
		registrations = append(registrations, &registration)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *RegistrationRepositoryImpl) CountByStatus(ctx context.Context, eventID int) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM registrations
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

// CheckIn 只更新入場狀態，不碰容量計數器
func (r *RegistrationRepositoryImpl) CheckIn(ctx context.Context, guestID, eventID int, state model.CheckInState) (*model.Registration, error) {
	query := fmt.Sprintf(`
		UPDATE registrations
		SET check_in_status = $1, check_in_time = $2, updated_at = $2
		WHERE guest_id = $3 AND event_id = $4 AND status = $5
		RETURNING %s
	`, registrationColumns)

	var registration model.Registration
	err := scanRegistration(r.pool.QueryRow(ctx, query,
		state, time.Now().UTC(), guestID, eventID, model.RSVPStatusConfirmed,
	), &registration)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotConfirmed
		}
		return nil, err
	}

	return &registration, nil
}
