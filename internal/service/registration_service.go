package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-rsvp-service/internal/cache"
	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/queue"
	"event-rsvp-service/internal/repository"
	"event-rsvp-service/internal/seat"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type RegistrationService interface {
	// 報名：決定 confirmed（附座位）或 waitlisted，客滿時自動降級
	Register(ctx context.Context, token uuid.UUID, req model.RSVPRequest) (*model.RSVPResult, error)
	// 取消：釋放名額，若有候補則遞補最久等待者
	Withdraw(ctx context.Context, token uuid.UUID, eventID uuid.UUID) (*model.WithdrawResult, error)
	// 改回覆：等同取消後重新報名，計數器在同一 transaction 內對帳
	UpdateResponse(ctx context.Context, token uuid.UUID, eventID uuid.UUID, status model.RSVPStatus) (*model.RSVPResult, error)
	GetStatus(ctx context.Context, token uuid.UUID, eventID *uuid.UUID) (*model.RegistrationStatus, error)
	ListAll(ctx context.Context) ([]*model.RegistrationDetail, error)
	CheckIn(ctx context.Context, token uuid.UUID, eventID uuid.UUID, state model.CheckInState) (*model.Registration, error)
}

type RegistrationServiceImpl struct {
	pool          *pgxpool.Pool
	guests        repository.GuestRepository
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	capacityCache cache.RedisCapacityCache
	notifications queue.NotificationQueue
}

func NewRegistrationService(
	pool *pgxpool.Pool,
	guests repository.GuestRepository,
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	capacityCache cache.RedisCapacityCache,
	notifications queue.NotificationQueue,
) RegistrationService {
	return &RegistrationServiceImpl{
		pool:          pool,
		guests:        guests,
		events:        events,
		registrations: registrations,
		capacityCache: capacityCache,
		notifications: notifications,
	}
}

// resolveActiveGuest 以 invitation token 找賓客，停用者視同不存在
func (s *RegistrationServiceImpl) resolveActiveGuest(ctx context.Context, token uuid.UUID) (*model.Guest, error) {
	guest, err := s.guests.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !guest.IsActive {
		return nil, apperrors.ErrGuestNotFound
	}
	return guest, nil
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, token uuid.UUID, req model.RSVPRequest) (*model.RSVPResult, error) {
	guest, err := s.resolveActiveGuest(ctx, token)
	if err != nil {
		return nil, err
	}

	eventUUID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	event, err := s.events.FindByEventID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}
	if !event.IsOpen(time.Now().UTC()) {
		return nil, apperrors.ErrEventClosed
	}

	// 先查一次方便回覆既有資料；最後防線仍是 (guest, event) 唯一約束
	if existing, err := s.registrations.FindByGuestAndEvent(ctx, guest.ID, event.ID); err == nil {
		return conflictResult(existing), apperrors.ErrAlreadyResponded
	} else if !errors.Is(err, apperrors.ErrRegistrationNotFound) {
		return nil, err
	}

	desired := model.RSVPStatus(req.Status)
	if !desired.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	registration := &model.Registration{
		GuestID: guest.ID,
		EventID: event.ID,
		Notes:   req.Notes,
	}

	finalStatus, seatNumber, err := s.admit(ctx, tx, event, desired)
	if err != nil {
		return nil, err
	}
	registration.Status = finalStatus
	registration.SeatNumber = seatNumber

	created, err := s.registrations.Create(ctx, tx, registration)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyResponded) {
			// 最後一刻輸掉唯一約束的 race：放掉 transaction，回覆既有紀錄
			_ = tx.Rollback(ctx)
			if existing, findErr := s.registrations.FindByGuestAndEvent(ctx, guest.ID, event.ID); findErr == nil {
				return conflictResult(existing), apperrors.ErrAlreadyResponded
			}
			return nil, apperrors.ErrAlreadyResponded
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, event.ID)
	if kind, ok := kindForStatus(finalStatus); ok {
		s.notify(created.GuestID, created.EventID, kind, created.SeatNumber)
	}

	return &model.RSVPResult{
		Status:     finalStatus,
		SeatNumber: created.SeatNumber,
		Message:    admissionMessage(desired, finalStatus, created.SeatNumber),
	}, nil
}

// admit 對單一回覆執行容量決策，呼叫端負責 transaction 邊界。
// desired = confirmed 時嘗試條件式保留，輸掉保留則透明降級為 waitlisted。
func (s *RegistrationServiceImpl) admit(ctx context.Context, tx pgx.Tx, event *model.Event, desired model.RSVPStatus) (model.RSVPStatus, *int, error) {
	switch desired {
	case model.RSVPStatusDeclined:
		// 婉拒不動任何計數器
		return model.RSVPStatusDeclined, nil, nil

	case model.RSVPStatusWaitlisted:
		if err := s.events.IncrementQueued(ctx, tx, event.ID); err != nil {
			return "", nil, err
		}
		return model.RSVPStatusWaitlisted, nil, nil

	default: // confirmed
		confirmedCount, reserved, err := s.events.ConditionalReserve(ctx, tx, event.ID)
		if err != nil {
			return "", nil, err
		}
		if !reserved {
			// 客滿，降級到候補
			if err := s.events.IncrementQueued(ctx, tx, event.ID); err != nil {
				return "", nil, err
			}
			return model.RSVPStatusWaitlisted, nil, nil
		}

		seatNumber, err := s.allocateSeat(ctx, tx, event, confirmedCount)
		if err != nil {
			return "", nil, err
		}
		return model.RSVPStatusConfirmed, &seatNumber, nil
	}
}

// allocateSeat 保留成功後挑選座位。此時 transaction 已持有 event row lock，
// 其他確認請求會被擋在 ConditionalReserve，座位查詢不會交錯。
func (s *RegistrationServiceImpl) allocateSeat(ctx context.Context, tx pgx.Tx, event *model.Event, confirmedCount int) (int, error) {
	taken, err := s.registrations.TakenSeats(ctx, tx, event.ID)
	if err != nil {
		return 0, err
	}
	return seat.Allocate(event.SeatPolicy, event.MaxCapacity, confirmedCount, taken)
}

func (s *RegistrationServiceImpl) Withdraw(ctx context.Context, token uuid.UUID, eventID uuid.UUID) (*model.WithdrawResult, error) {
	guest, err := s.resolveActiveGuest(ctx, token)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	// 業務規則：過了報名截止時間不再受理取消
	if event.RegistrationDeadline != nil && time.Now().UTC().After(*event.RegistrationDeadline) {
		return nil, apperrors.ErrEventClosed
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// DELETE ... RETURNING 是重複釋放的防線：第二個併發取消拿不到 row
	released, err := s.registrations.DeleteReturning(ctx, tx, guest.ID, event.ID)
	if err != nil {
		return nil, err
	}

	var promoted *model.PromotedGuest
	switch released.Status {
	case model.RSVPStatusConfirmed:
		if err := s.events.ReleaseConfirmed(ctx, tx, event.ID); err != nil {
			return nil, err
		}
		promoted, err = s.promoteOldest(ctx, tx, event, 0)
		if err != nil {
			return nil, err
		}
	case model.RSVPStatusWaitlisted:
		if err := s.events.DecrementQueued(ctx, tx, event.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, event.ID)
	if promoted != nil {
		seatNumber := promoted.SeatNumber
		s.notify(promoted.GuestID, event.ID, model.EmailKindPromotion, &seatNumber)
	}

	return &model.WithdrawResult{
		ReleasedStatus: released.Status,
		Promoted:       promoted,
	}, nil
}

// promoteOldest 遞補最久等待的候補者：保留名額、配座位、轉 confirmed、
// 扣候補計數，全部在呼叫端的 transaction 內。每個釋出的名額恰好遞補一人；
// 沒有候補者時回傳 nil。excludeID 排除呼叫端正在改的那筆（改回覆路徑用）。
func (s *RegistrationServiceImpl) promoteOldest(ctx context.Context, tx pgx.Tx, event *model.Event, excludeID int) (*model.PromotedGuest, error) {
	candidate, err := s.registrations.OldestWaitlisted(ctx, tx, event.ID, excludeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRegistrationNotFound) {
			return nil, nil
		}
		return nil, err
	}

	confirmedCount, reserved, err := s.events.ConditionalReserve(ctx, tx, event.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		// 釋出的名額在同一 transaction 內不可能被搶走；保守跳過遞補
		return nil, nil
	}

	seatNumber, err := s.allocateSeat(ctx, tx, event, confirmedCount)
	if err != nil {
		return nil, err
	}

	promoted, err := s.registrations.Promote(ctx, tx, candidate.ID, seatNumber)
	if err != nil {
		return nil, err
	}

	if err := s.events.DecrementQueued(ctx, tx, event.ID); err != nil {
		return nil, err
	}

	return &model.PromotedGuest{
		GuestID:        promoted.GuestID,
		RegistrationID: promoted.ID,
		SeatNumber:     seatNumber,
	}, nil
}

func (s *RegistrationServiceImpl) UpdateResponse(ctx context.Context, token uuid.UUID, eventID uuid.UUID, desired model.RSVPStatus) (*model.RSVPResult, error) {
	guest, err := s.resolveActiveGuest(ctx, token)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsOpen(time.Now().UTC()) {
		return nil, apperrors.ErrEventClosed
	}
	if !desired.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := s.registrations.FindForUpdate(ctx, tx, guest.ID, event.ID)
	if err != nil {
		return nil, err
	}

	if current.Status == desired {
		return &model.RSVPResult{
			Status:     current.Status,
			SeatNumber: current.SeatNumber,
			Message:    "Your response is unchanged",
		}, nil
	}

	// 釋放舊狀態的計數器，再以同樣的報名規則套用新狀態，
	// 中間不存在兩個計數器都算（或都不算）這位賓客的窗口
	wasConfirmed := current.IsConfirmed()
	switch current.Status {
	case model.RSVPStatusConfirmed:
		if err := s.events.ReleaseConfirmed(ctx, tx, event.ID); err != nil {
			return nil, err
		}
	case model.RSVPStatusWaitlisted:
		if err := s.events.DecrementQueued(ctx, tx, event.ID); err != nil {
			return nil, err
		}
	}

	finalStatus, seatNumber, err := s.admit(ctx, tx, event, desired)
	if err != nil {
		return nil, err
	}

	updated, err := s.registrations.UpdateResponse(ctx, tx, current.ID, finalStatus, seatNumber)
	if err != nil {
		return nil, err
	}

	var promoted *model.PromotedGuest
	if wasConfirmed && finalStatus != model.RSVPStatusConfirmed {
		promoted, err = s.promoteOldest(ctx, tx, event, current.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.refreshSnapshot(ctx, event.ID)
	if finalStatus == model.RSVPStatusConfirmed && !wasConfirmed {
		s.notify(updated.GuestID, event.ID, model.EmailKindConfirmation, updated.SeatNumber)
	}
	if promoted != nil {
		promotedSeat := promoted.SeatNumber
		s.notify(promoted.GuestID, event.ID, model.EmailKindPromotion, &promotedSeat)
	}

	return &model.RSVPResult{
		Status:     finalStatus,
		SeatNumber: updated.SeatNumber,
		Message:    admissionMessage(desired, finalStatus, updated.SeatNumber),
	}, nil
}

func (s *RegistrationServiceImpl) GetStatus(ctx context.Context, token uuid.UUID, eventID *uuid.UUID) (*model.RegistrationStatus, error) {
	guest, err := s.resolveActiveGuest(ctx, token)
	if err != nil {
		return nil, err
	}

	var event *model.Event
	if eventID != nil {
		event, err = s.events.FindByEventID(ctx, *eventID)
	} else {
		event, err = s.events.FindNextActive(ctx)
	}
	if err != nil {
		return nil, err
	}

	var registration *model.Registration
	if found, err := s.registrations.FindByGuestAndEvent(ctx, guest.ID, event.ID); err == nil {
		registration = found
	} else if !errors.Is(err, apperrors.ErrRegistrationNotFound) {
		return nil, err
	}

	return &model.RegistrationStatus{
		Registration: registration,
		Event:        event,
		Capacity:     s.capacitySnapshot(ctx, event),
	}, nil
}

// capacitySnapshot 先讀 Redis 快照，miss 時以資料庫值補寫。
// 讀取端拿到的是最終一致的快照，不參與任何容量決策。
func (s *RegistrationServiceImpl) capacitySnapshot(ctx context.Context, event *model.Event) model.CapacitySnapshot {
	if snapshot, err := s.capacityCache.GetSnapshot(ctx, event.ID); err == nil {
		return snapshot
	}

	snapshot := model.CapacitySnapshot{
		ConfirmedCount: event.ConfirmedCount,
		QueuedCount:    event.QueuedCount,
		MaxCapacity:    event.MaxCapacity,
		SpotsRemaining: event.SpotsRemaining(),
		IsOpen:         event.IsOpen(time.Now().UTC()),
	}
	if err := s.capacityCache.PutSnapshot(ctx, event.ID, snapshot); err != nil {
		logger.WithComponent("service").Warn("put capacity snapshot failed", zap.Int("event_id", event.ID), zap.Error(err))
	}
	return snapshot
}

func (s *RegistrationServiceImpl) ListAll(ctx context.Context) ([]*model.RegistrationDetail, error) {
	return s.registrations.ListAll(ctx)
}

func (s *RegistrationServiceImpl) CheckIn(ctx context.Context, token uuid.UUID, eventID uuid.UUID, state model.CheckInState) (*model.Registration, error) {
	if !state.IsValid() || state == model.CheckInNotArrived {
		return nil, apperrors.ErrInvalidInput
	}
	guest, err := s.resolveActiveGuest(ctx, token)
	if err != nil {
		return nil, err
	}
	event, err := s.events.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.registrations.CheckIn(ctx, guest.ID, event.ID, state)
}

// refreshSnapshot 計數器變動後更新 Redis 快照；失敗只記 log，不影響主流程
func (s *RegistrationServiceImpl) refreshSnapshot(ctx context.Context, eventID int) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		logger.WithComponent("service").Warn("refresh snapshot: load event failed", zap.Int("event_id", eventID), zap.Error(err))
		return
	}
	snapshot := model.CapacitySnapshot{
		ConfirmedCount: event.ConfirmedCount,
		QueuedCount:    event.QueuedCount,
		MaxCapacity:    event.MaxCapacity,
		SpotsRemaining: event.SpotsRemaining(),
		IsOpen:         event.IsOpen(time.Now().UTC()),
	}
	if err := s.capacityCache.PutSnapshot(ctx, eventID, snapshot); err != nil {
		logger.WithComponent("service").Warn("refresh snapshot failed", zap.Int("event_id", eventID), zap.Error(err))
	}
}

func kindForStatus(status model.RSVPStatus) (model.EmailKind, bool) {
	switch status {
	case model.RSVPStatusConfirmed:
		return model.EmailKindConfirmation, true
	case model.RSVPStatusWaitlisted:
		return model.EmailKindWaitlisted, true
	}
	return "", false
}

// notify 發佈通知。寄送屬於外部協作者，發佈失敗不可影響報名結果，
// 因此用 context.Background() 且只記 log。
func (s *RegistrationServiceImpl) notify(guestID, eventID int, kind model.EmailKind, seatNumber *int) {
	notification := &model.Notification{
		GuestID:    guestID,
		EventID:    eventID,
		Kind:       kind,
		SeatNumber: seatNumber,
	}
	if err := s.notifications.PublishNotification(context.Background(), notification); err != nil {
		logger.WithComponent("service").Warn("publish notification failed",
			zap.Int("guest_id", guestID), zap.Int("event_id", eventID), zap.Error(err))
	}
}

func conflictResult(existing *model.Registration) *model.RSVPResult {
	return &model.RSVPResult{
		Status:     existing.Status,
		SeatNumber: existing.SeatNumber,
		Message:    "You have already responded to this invitation",
	}
}

func admissionMessage(desired, final model.RSVPStatus, seatNumber *int) string {
	switch {
	case final == model.RSVPStatusConfirmed && seatNumber != nil:
		return fmt.Sprintf("Your RSVP has been confirmed. Your seat number is %d", *seatNumber)
	case final == model.RSVPStatusWaitlisted && desired == model.RSVPStatusConfirmed:
		return "Event is full. You have been added to the waitlist"
	case final == model.RSVPStatusWaitlisted:
		return "You have been added to the waitlist"
	default:
		return "Your response has been recorded"
	}
}
