package cloner

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sitewarden/sitecloner/api"
	"github.com/sitewarden/sitecloner/interfaces"
)

// newCloneServer serves the routed handler, capturing the function key of
// every request.
func newCloneServer(t *testing.T, env *testEnv, sawKey *string) *httptest.Server {
	t.Helper()

	mux := chi.NewRouter()
	env.handler.RegisterRoutes(mux)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*sawKey = r.Header.Get(api.FunctionKeyHeader)
		mux.ServeHTTP(w, r)
	}))
}

func TestCloneClient_Success(t *testing.T) {
	env := setupTestEnvironment(t, nil)

	source := interfaces.SiteURL("https://contoso.example.com/sites/a")
	target := interfaces.SiteURL("https://contoso.example.com/sites/b")

	session := new(provisioningSessionStub)
	env.certStore.On("Lookup", mock.Anything, env.identity.Thumbprint).Return(env.cert, nil)
	env.sessions.On("Open", mock.Anything, mock.Anything, env.cert).Return(session, nil)
	env.extractor.On("Extract", mock.Anything, session, mock.Anything).Return(interfaces.ProvisioningTemplate(`{}`), nil)
	env.applier.On("Apply", mock.Anything, session, mock.Anything, mock.Anything).Return(nil)

	var sawKey string
	server := newCloneServer(t, env, &sawKey)
	defer server.Close()

	client := &CloneClient{ServerAddr: server.URL, FunctionKey: "shared-key"}
	require.NoError(t, client.Clone(source, target))
	assert.Equal(t, "shared-key", sawKey)
}

func TestCloneClient_SurfacesServerErrors(t *testing.T) {
	env := setupTestEnvironment(t, nil)

	env.certStore.On("Lookup", mock.Anything, env.identity.Thumbprint).Return(nil, interfaces.ErrCertificateNotFound)

	var sawKey string
	server := newCloneServer(t, env, &sawKey)
	defer server.Close()

	client := &CloneClient{ServerAddr: server.URL}
	err := client.Clone("https://a.example.com", "https://b.example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "CERTIFICATE ERROR")
	assert.Empty(t, sawKey)
}

func TestCloneClient_RejectedRequest(t *testing.T) {
	env := setupTestEnvironment(t, nil)

	var sawKey string
	server := newCloneServer(t, env, &sawKey)
	defer server.Close()

	client := &CloneClient{ServerAddr: server.URL}
	err := client.Clone("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), api.MissingSiteURLsMessage)
}

// provisioningSessionStub is a do-nothing session for round trips where the
// capabilities are mocked anyway.
type provisioningSessionStub struct{}

func (s *provisioningSessionStub) Site() interfaces.SiteURL  { return "https://stub.example.com" }
func (s *provisioningSessionStub) Info() interfaces.SiteInfo { return interfaces.SiteInfo{} }
func (s *provisioningSessionStub) Close() error              { return nil }

func (s *provisioningSessionStub) Do(req *http.Request) (*http.Response, error) {
	return nil, http.ErrNotSupported
}
