package services

import (
	"context"

	"event-rsvp-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type RegistrationServiceMock struct {
	mock.Mock
}

func NewRegistrationServiceMock() *RegistrationServiceMock {
	return &RegistrationServiceMock{}
}

func (m *RegistrationServiceMock) Register(ctx context.Context, token uuid.UUID, req model.RSVPRequest) (*model.RSVPResult, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// 冪等衝突時 result 與 error 同時存在
	return args.Get(0).(*model.RSVPResult), args.Error(1)
}

func (m *RegistrationServiceMock) Withdraw(ctx context.Context, token uuid.UUID, eventID uuid.UUID) (*model.WithdrawResult, error) {
	args := m.Called(ctx, token, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WithdrawResult), args.Error(1)
}

func (m *RegistrationServiceMock) UpdateResponse(ctx context.Context, token uuid.UUID, eventID uuid.UUID, status model.RSVPStatus) (*model.RSVPResult, error) {
	args := m.Called(ctx, token, eventID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RSVPResult), args.Error(1)
}

func (m *RegistrationServiceMock) GetStatus(ctx context.Context, token uuid.UUID, eventID *uuid.UUID) (*model.RegistrationStatus, error) {
	args := m.Called(ctx, token, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RegistrationStatus), args.Error(1)
}

func (m *RegistrationServiceMock) ListAll(ctx context.Context) ([]*model.RegistrationDetail, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RegistrationDetail), args.Error(1)
}

func (m *RegistrationServiceMock) CheckIn(ctx context.Context, token uuid.UUID, eventID uuid.UUID, state model.CheckInState) (*model.Registration, error) {
	args := m.Called(ctx, token, eventID, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}
