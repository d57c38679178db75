package provisioning

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewarden/sitecloner/interfaces"
)

// newIdentityProvider serves the token endpoint for any tenant, handing out
// the same access token to every caller.
func newIdentityProvider(t *testing.T, accessToken string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: accessToken, ExpiresIn: 3599})
	}))
}

func newTestEngine(t *testing.T, authority string) *Engine {
	t.Helper()

	return NewEngine(&EngineConfig{
		Identity: interfaces.AppIdentity{
			ClientID: "client-1",
			TenantID: "tenant-1",
		},
		Authority: authority,
		Log:       testLogger(),
	})
}

func TestEngineOpen(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()
	cert := testCertificate(t)

	var siteURL string
	var sawAuth string
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/web", r.URL.Path)
		sawAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"url":%q,"title":"Marketing"}`, siteURL)
	}))
	defer site.Close()
	siteURL = site.URL

	engine := newTestEngine(t, idp.URL)

	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), cert)
	require.NoError(t, err)
	defer session.Close()

	assert.Equal(t, "Bearer site-token", sawAuth)
	assert.Equal(t, interfaces.SiteURL(site.URL), session.Site())
	assert.Equal(t, interfaces.SiteURL(site.URL), session.Info().URL)
	assert.Equal(t, "Marketing", session.Info().Title)
}

func TestEngineOpenValidationFailure(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied for this principal", http.StatusForbidden)
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)

	_, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session validation failed")
	assert.Contains(t, err.Error(), "403")
}

func TestEngineOpenTokenFailure(t *testing.T) {
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(tokenErrorResponse{Code: "unauthorized_client", Description: "no such app registration"})
	}))
	defer idp.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("site must not be reached without a token")
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)

	_, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized_client")
}

func TestEngineOpenRejectsBadInput(t *testing.T) {
	engine := newTestEngine(t, "")

	_, err := engine.Open(context.Background(), interfaces.SiteURL("not a url"), testCertificate(t))
	assert.Error(t, err)

	_, err = engine.Open(context.Background(), interfaces.SiteURL("https://contoso.example.com"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusable client certificate")
}

func TestSessionClose(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"url":"https://x.example.com","title":"X"}`)
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	req, err := http.NewRequest(http.MethodGet, site.URL+"/api/web", nil)
	require.NoError(t, err)
	_, err = session.Do(req)
	assert.ErrorIs(t, err, interfaces.ErrSessionClosed)
}

// extractSite serves the metadata endpoint plus a canned extraction stream.
func extractSite(t *testing.T, stream string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/web":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"url":"https://source.example.com","title":"Source"}`)
		case "/api/provisioning/template/extract":
			require.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprint(w, stream)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestEngineExtract(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	stream := strings.Join([]string{
		`{"type":"progress","message":"Loading site","step":1,"total":3}`,
		`{"type":"progress","message":"Extracting lists","step":2,"total":3}`,
		fmt.Sprintf(`{"type":"template","template":%q}`, base64.StdEncoding.EncodeToString([]byte(`{"version":1}`))),
	}, "\n")
	site := extractSite(t, stream)
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	recorder := &progressRecorder{}
	template, err := engine.Extract(context.Background(), session, recorder)
	require.NoError(t, err)

	assert.Equal(t, `{"version":1}`, string(template))
	require.Len(t, recorder.events, 2)
	assert.Equal(t, recordedProgress{Message: "Loading site", Step: 1, Total: 3}, recorder.events[0])
	assert.Equal(t, recordedProgress{Message: "Extracting lists", Step: 2, Total: 3}, recorder.events[1])
}

func TestEngineExtractEmptyTemplate(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := extractSite(t, `{"type":"template","template":""}`)
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	_, err = engine.Extract(context.Background(), session, nil)
	assert.ErrorIs(t, err, interfaces.ErrEmptyTemplate)
}

func TestEngineExtractRemoteError(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := extractSite(t, `{"type":"error","error":"site collection is locked"}`)
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	_, err = engine.Extract(context.Background(), session, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "site collection is locked")
}

func TestEngineExtractWrongTerminal(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := extractSite(t, `{"type":"done"}`)
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	_, err = engine.Extract(context.Background(), session, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected terminal event")
}

func TestEngineApply(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	var applyBody []byte
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/web":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"url":"https://target.example.com","title":"Target"}`)
		case "/api/provisioning/template/apply":
			require.Equal(t, http.MethodPost, r.Method)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			applyBody = body

			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprint(w, strings.Join([]string{
				`{"type":"progress","message":"Provisioning fields","step":1,"total":2}`,
				`{"type":"done"}`,
			}, "\n"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	template := interfaces.ProvisioningTemplate(`{"version":1}`)
	recorder := &progressRecorder{}
	require.NoError(t, engine.Apply(context.Background(), session, template, recorder))

	var sent applyRequest
	require.NoError(t, json.Unmarshal(applyBody, &sent))
	assert.Equal(t, []byte(template), sent.Template)
	assert.True(t, sent.ClearNavigation)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, recordedProgress{Message: "Provisioning fields", Step: 1, Total: 2}, recorder.events[0])
}

func TestEngineApplyRemoteError(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/web":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"url":"https://target.example.com","title":"Target"}`)
		case "/api/provisioning/template/apply":
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprint(w, `{"type":"error","error":"navigation update rejected"}`)
		}
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	err = engine.Apply(context.Background(), session, interfaces.ProvisioningTemplate(`{}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "navigation update rejected")
}

func TestEngineApplyWrongTerminal(t *testing.T) {
	idp := newIdentityProvider(t, "site-token")
	defer idp.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/web":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"url":"https://target.example.com","title":"Target"}`)
		case "/api/provisioning/template/apply":
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprint(w, `{"type":"template","template":"e30="}`)
		}
	}))
	defer site.Close()

	engine := newTestEngine(t, idp.URL)
	session, err := engine.Open(context.Background(), interfaces.SiteURL(site.URL), testCertificate(t))
	require.NoError(t, err)
	defer session.Close()

	err = engine.Apply(context.Background(), session, interfaces.ProvisioningTemplate(`{}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected terminal event")
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "https://a.example.com/api/web", endpointURL(interfaces.SiteURL("https://a.example.com"), "/api/web"))
	assert.Equal(t, "https://a.example.com/sites/x/api/web", endpointURL(interfaces.SiteURL("https://a.example.com/sites/x/"), "/api/web"))
}
