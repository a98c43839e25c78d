package service

import (
	"context"
	"strings"

	"event-rsvp-service/internal/model"
	"event-rsvp-service/internal/repository"

	"github.com/google/uuid"
)

type GuestService interface {
	Create(ctx context.Context, req model.CreateGuestRequest) (*model.Guest, error)
	// Import 批次匯入，重複 email 略過不中斷
	Import(ctx context.Context, req model.ImportGuestsRequest) (*model.ImportGuestsResult, error)
	List(ctx context.Context) ([]*model.Guest, error)
}

type GuestServiceImpl struct {
	repo repository.GuestRepository
}

func NewGuestService(repo repository.GuestRepository) GuestService {
	return &GuestServiceImpl{repo: repo}
}

func newGuest(req model.CreateGuestRequest) *model.Guest {
	return &model.Guest{
		Token:     uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
}

func (s *GuestServiceImpl) Create(ctx context.Context, req model.CreateGuestRequest) (*model.Guest, error) {
	return s.repo.Create(ctx, newGuest(req))
}

func (s *GuestServiceImpl) Import(ctx context.Context, req model.ImportGuestsRequest) (*model.ImportGuestsResult, error) {
	guests := make([]*model.Guest, 0, len(req.Guests))
	for _, g := range req.Guests {
		guests = append(guests, newGuest(g))
	}

	imported, skipped, err := s.repo.Import(ctx, guests)
	if err != nil {
		return nil, err
	}

	return &model.ImportGuestsResult{
		Imported: imported,
		Skipped:  skipped,
	}, nil
}

func (s *GuestServiceImpl) List(ctx context.Context) ([]*model.Guest, error) {
	return s.repo.List(ctx)
}
