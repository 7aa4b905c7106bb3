package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type SessionsService struct {
	mock.Mock
}

func (_m *SessionsService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Session)
	}
	return r0, ret.Error(1)
}

func (_m *SessionsService) CreateSession(ctx context.Context, session domain.Session) (*domain.Session, error) {
	ret := _m.Called(ctx, session)

	var r0 *domain.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Session)
	}
	return r0, ret.Error(1)
}

func (_m *SessionsService) UpdateSession(ctx context.Context, id domain.ID, session domain.Session) (*domain.Session, error) {
	ret := _m.Called(ctx, id, session)

	var r0 *domain.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Session)
	}
	return r0, ret.Error(1)
}

func (_m *SessionsService) DeleteSession(ctx context.Context, id domain.ID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *SessionsService) ReserveSeats(ctx context.Context, id domain.ID, seats int) (*domain.Session, error) {
	ret := _m.Called(ctx, id, seats)

	var r0 *domain.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Session)
	}
	return r0, ret.Error(1)
}

func NewSessionsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *SessionsService {
	m := &SessionsService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
