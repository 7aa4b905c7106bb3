package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type AccountsService struct {
	mock.Mock
}

func (_m *AccountsService) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	ret := _m.Called(ctx, token)

	var r0 []domain.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.User)
	}
	return r0, ret.Error(1)
}

func (_m *AccountsService) ListReservations(ctx context.Context, token string) ([]domain.Reservation, error) {
	ret := _m.Called(ctx, token)

	var r0 []domain.Reservation
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Reservation)
	}
	return r0, ret.Error(1)
}

func (_m *AccountsService) RegisterUser(ctx context.Context, user domain.User) (*domain.AuthResult, error) {
	ret := _m.Called(ctx, user)

	var r0 *domain.AuthResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.AuthResult)
	}
	return r0, ret.Error(1)
}

func (_m *AccountsService) Authenticate(ctx context.Context, credentials domain.Credentials) (*domain.AuthResult, error) {
	ret := _m.Called(ctx, credentials)

	var r0 *domain.AuthResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.AuthResult)
	}
	return r0, ret.Error(1)
}

func (_m *AccountsService) AddReservation(ctx context.Context, reservation domain.Reservation, token string) (*domain.Reservation, error) {
	ret := _m.Called(ctx, reservation, token)

	var r0 *domain.Reservation
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Reservation)
	}
	return r0, ret.Error(1)
}

func (_m *AccountsService) DeleteReservationsBySession(ctx context.Context, sessionID domain.ID, token string) error {
	ret := _m.Called(ctx, sessionID, token)
	return ret.Error(0)
}

func (_m *AccountsService) DeleteReservationsBySessions(ctx context.Context, sessionIDs []domain.ID, token string) error {
	ret := _m.Called(ctx, sessionIDs, token)
	return ret.Error(0)
}

func NewAccountsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *AccountsService {
	m := &AccountsService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
