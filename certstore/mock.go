package certstore

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sitewarden/sitecloner/interfaces"
)

// MockCertificateStore mocks the CertificateStore interface
type MockCertificateStore struct {
	mock.Mock
}

// Lookup mocks the Lookup method
func (m *MockCertificateStore) Lookup(ctx context.Context, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	args := m.Called(ctx, thumbprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ClientCertificate), args.Error(1)
}

// Available mocks the Available method
func (m *MockCertificateStore) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Name mocks the Name method
func (m *MockCertificateStore) Name() string {
	args := m.Called()
	return args.String(0)
}

// LocationURI mocks the LocationURI method
func (m *MockCertificateStore) LocationURI() string {
	args := m.Called()
	return args.String(0)
}
