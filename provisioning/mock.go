package provisioning

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/sitewarden/sitecloner/interfaces"
)

// MockSessionFactory mocks the SessionFactory interface
type MockSessionFactory struct {
	mock.Mock
}

// Open mocks the Open method
func (m *MockSessionFactory) Open(ctx context.Context, site interfaces.SiteURL, cert *interfaces.ClientCertificate) (interfaces.Session, error) {
	args := m.Called(ctx, site, cert)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.Session), args.Error(1)
}

// MockSession mocks the Session interface
type MockSession struct {
	mock.Mock
}

// Site mocks the Site method
func (m *MockSession) Site() interfaces.SiteURL {
	args := m.Called()
	return args.Get(0).(interfaces.SiteURL)
}

// Info mocks the Info method
func (m *MockSession) Info() interfaces.SiteInfo {
	args := m.Called()
	return args.Get(0).(interfaces.SiteInfo)
}

// Do mocks the Do method
func (m *MockSession) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// Close mocks the Close method
func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTemplateExtractor mocks the TemplateExtractor interface
type MockTemplateExtractor struct {
	mock.Mock
}

// Extract mocks the Extract method
func (m *MockTemplateExtractor) Extract(ctx context.Context, session interfaces.Session, progress interfaces.ProgressReporter) (interfaces.ProvisioningTemplate, error) {
	args := m.Called(ctx, session, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(interfaces.ProvisioningTemplate), args.Error(1)
}

// MockTemplateApplier mocks the TemplateApplier interface
type MockTemplateApplier struct {
	mock.Mock
}

// Apply mocks the Apply method
func (m *MockTemplateApplier) Apply(ctx context.Context, session interfaces.Session, template interfaces.ProvisioningTemplate, progress interfaces.ProgressReporter) error {
	args := m.Called(ctx, session, template, progress)
	return args.Error(0)
}
