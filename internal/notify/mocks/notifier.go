// Package mocks provides testify mocks for the notify package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/empire-watcher/internal/notify"
)

// MockNotifier is a testify mock of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a MockNotifier whose expectations are asserted
// when the test ends.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockNotifier {
	m := &MockNotifier{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create provides a mock function.
func (m *MockNotifier) Create(ctx context.Context, payload *notify.ItemPayload) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

// Edit provides a mock function.
func (m *MockNotifier) Edit(ctx context.Context, handle string, payload *notify.ItemPayload) error {
	args := m.Called(ctx, handle, payload)
	return args.Error(0)
}

var _ notify.Notifier = (*MockNotifier)(nil)
