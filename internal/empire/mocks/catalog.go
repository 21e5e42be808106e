// Package mocks provides testify mocks for the empire package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/donaldgifford/empire-watcher/internal/empire"
)

// MockCatalogClient is a testify mock of empire.CatalogClient.
type MockCatalogClient struct {
	mock.Mock
}

// NewMockCatalogClient creates a MockCatalogClient whose expectations are
// asserted when the test ends.
func NewMockCatalogClient(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockCatalogClient {
	m := &MockCatalogClient{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Search provides a mock function.
func (m *MockCatalogClient) Search(ctx context.Context, req empire.SearchRequest) (*empire.SearchResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*empire.SearchResponse)
	return resp, args.Error(1)
}

// MockCredentialProvider is a testify mock of empire.CredentialProvider.
type MockCredentialProvider struct {
	mock.Mock
}

// NewMockCredentialProvider creates a MockCredentialProvider whose
// expectations are asserted when the test ends.
func NewMockCredentialProvider(t interface {
	mock.TestingT
	Cleanup(func())
},
) *MockCredentialProvider {
	m := &MockCredentialProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Credentials provides a mock function.
func (m *MockCredentialProvider) Credentials(ctx context.Context) (*empire.SocketCredentials, error) {
	args := m.Called(ctx)
	creds, _ := args.Get(0).(*empire.SocketCredentials)
	return creds, args.Error(1)
}

var (
	_ empire.CatalogClient      = (*MockCatalogClient)(nil)
	_ empire.CredentialProvider = (*MockCredentialProvider)(nil)
)
