package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/srgjo27/cinema_client/internal/core/domain"
)

type SnapshotStore struct {
	mock.Mock
}

func (_m *SnapshotStore) SaveSnapshot(ctx context.Context, resource domain.Resource, data []byte) error {
	ret := _m.Called(ctx, resource, data)
	return ret.Error(0)
}

func (_m *SnapshotStore) LoadSnapshot(ctx context.Context, resource domain.Resource) ([]byte, error) {
	ret := _m.Called(ctx, resource)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

func NewSnapshotStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *SnapshotStore {
	m := &SnapshotStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
