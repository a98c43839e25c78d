package services

import (
	"context"

	"event-rsvp-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type GuestServiceMock struct {
	mock.Mock
}

func NewGuestServiceMock() *GuestServiceMock {
	return &GuestServiceMock{}
}

func (m *GuestServiceMock) Create(ctx context.Context, req model.CreateGuestRequest) (*model.Guest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Guest), args.Error(1)
}

func (m *GuestServiceMock) Import(ctx context.Context, req model.ImportGuestsRequest) (*model.ImportGuestsResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImportGuestsResult), args.Error(1)
}

func (m *GuestServiceMock) List(ctx context.Context) ([]*model.Guest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Guest), args.Error(1)
}
