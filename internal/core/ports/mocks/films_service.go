package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type FilmsService struct {
	mock.Mock
}

func (_m *FilmsService) ListFilms(ctx context.Context) ([]domain.Film, error) {
	ret := _m.Called(ctx)

	var r0 []domain.Film
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.Film)
	}
	return r0, ret.Error(1)
}

func (_m *FilmsService) CreateFilm(ctx context.Context, film domain.Film) (*domain.Film, error) {
	ret := _m.Called(ctx, film)

	var r0 *domain.Film
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Film)
	}
	return r0, ret.Error(1)
}

func (_m *FilmsService) UpdateFilm(ctx context.Context, id domain.ID, film domain.Film) (*domain.Film, error) {
	ret := _m.Called(ctx, id, film)

	var r0 *domain.Film
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.Film)
	}
	return r0, ret.Error(1)
}

func (_m *FilmsService) DeleteFilm(ctx context.Context, id domain.ID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

// NewFilmsService registers AssertExpectations as a test cleanup.
func NewFilmsService(t interface {
	mock.TestingT
	Cleanup(func())
}) *FilmsService {
	m := &FilmsService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
