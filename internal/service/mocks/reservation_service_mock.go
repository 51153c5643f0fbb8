package mocks

import (
	"context"
	"plate-rescue/internal/model"

	"github.com/stretchr/testify/mock"
)

type ReservationServiceMock struct {
	mock.Mock
}

func NewReservationServiceMock() *ReservationServiceMock {
	return &ReservationServiceMock{}
}

func (m *ReservationServiceMock) Reserve(ctx context.Context, actor model.Actor, req model.CreateReservationRequest) (*model.Reservation, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) Confirm(ctx context.Context, actor model.Actor, reservationID int) (*model.ConfirmResult, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmResult), args.Error(1)
}

func (m *ReservationServiceMock) Cancel(ctx context.Context, actor model.Actor, reservationID int) (*model.Reservation, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) Claim(ctx context.Context, actor model.Actor, reservationID int, qty int) (*model.Reservation, error) {
	args := m.Called(ctx, actor, reservationID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ClaimBatch(ctx context.Context, actor model.Actor, items []model.ClaimItem) ([]*model.Reservation, error) {
	args := m.Called(ctx, actor, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) PickUp(ctx context.Context, actor model.Actor, reservationID int, code string) (*model.Reservation, error) {
	args := m.Called(ctx, actor, reservationID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) GetByID(ctx context.Context, actor model.Actor, reservationID int) (*model.Reservation, error) {
	args := m.Called(ctx, actor, reservationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ListMine(ctx context.Context, actor model.Actor) ([]*model.Reservation, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ListDonated(ctx context.Context, actor model.Actor) ([]*model.Reservation, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) QuotaStatus(ctx context.Context, actor model.Actor) (*model.QuotaStatus, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QuotaStatus), args.Error(1)
}
