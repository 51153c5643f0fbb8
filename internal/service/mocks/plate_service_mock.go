package mocks

import (
	"context"
	"plate-rescue/internal/model"

	"github.com/stretchr/testify/mock"
)

type PlateServiceMock struct {
	mock.Mock
}

func NewPlateServiceMock() *PlateServiceMock {
	return &PlateServiceMock{}
}

func (m *PlateServiceMock) Create(ctx context.Context, actor model.Actor, req model.CreatePlateRequest) (*model.Plate, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plate), args.Error(1)
}

func (m *PlateServiceMock) GetByID(ctx context.Context, id int) (*model.Plate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Plate), args.Error(1)
}

func (m *PlateServiceMock) ListAvailable(ctx context.Context) ([]model.PlateAvailability, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlateAvailability), args.Error(1)
}

func (m *PlateServiceMock) ListMine(ctx context.Context, actor model.Actor) ([]*model.Plate, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Plate), args.Error(1)
}

func (m *PlateServiceMock) Deactivate(ctx context.Context, actor model.Actor, id int) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *PlateServiceMock) Refresh(ctx context.Context, plateID int) error {
	args := m.Called(ctx, plateID)
	return args.Error(0)
}

func (m *PlateServiceMock) WarmUp(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
