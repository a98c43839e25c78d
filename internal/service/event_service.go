package service

import (
	"context"

	"event-rsvp-service/internal/cache"
	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/repository"
	apperrors "event-rsvp-service/pkg/app_errors"
	"event-rsvp-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	List(ctx context.Context) ([]*model.Event, error)
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	// Stats 管理端統計：各狀態報名數與通知寄送數
	Stats(ctx context.Context, eventID uuid.UUID) (*model.EventStats, error)
}

type EventServiceImpl struct {
	repo          repository.EventRepository
	registrations repository.RegistrationRepository
	emailLogs     repository.EmailLogRepository
	capacityCache cache.RedisCapacityCache
}

func NewEventService(
	repo repository.EventRepository,
	registrations repository.RegistrationRepository,
	emailLogs repository.EmailLogRepository,
	capacityCache cache.RedisCapacityCache,
) EventService {
	return &EventServiceImpl{
		repo:          repo,
		registrations: registrations,
		emailLogs:     emailLogs,
		capacityCache: capacityCache,
	}
}

func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.repo.List(ctx)
}

func (s *EventServiceImpl) GetByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	return s.repo.FindByEventID(ctx, eventID)
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.MaxCapacity <= 0 {
		return nil, apperrors.ErrInvalidInput
	}
	if event.SeatPolicy == "" {
		event.SeatPolicy = model.SeatPolicySequential
	}
	if !event.SeatPolicy.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) UpdateByEventID(ctx context.Context, eventID uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	if params.SeatPolicy != nil && !params.SeatPolicy.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, event.ID, params)
	if err != nil {
		return nil, err
	}

	// 開放狀態或截止時間改了，舊快照作廢
	if err := s.capacityCache.Invalidate(ctx, updated.ID); err != nil {
		logger.WithComponent("service").Warn("invalidate capacity snapshot failed",
			zap.Int("event_id", updated.ID), zap.Error(err))
	}

	return updated, nil
}

func (s *EventServiceImpl) Stats(ctx context.Context, eventID uuid.UUID) (*model.EventStats, error) {
	event, err := s.repo.FindByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rsvpCounts, err := s.registrations.CountByStatus(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	emailCounts, err := s.emailLogs.CountByStatus(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	return &model.EventStats{
		Event:       event,
		RSVPCounts:  rsvpCounts,
		EmailCounts: emailCounts,
	}, nil
}
