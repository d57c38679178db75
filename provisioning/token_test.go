package provisioning

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewarden/sitecloner/cryptoutils"
	"github.com/sitewarden/sitecloner/interfaces"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testCertificate generates a throwaway client certificate for signing
// assertions in tests.
func testCertificate(t *testing.T) *interfaces.ClientCertificate {
	t.Helper()

	certPEM, keyPEM, err := cryptoutils.GenerateCertificate("token-test")
	require.NoError(t, err)
	cert, key, err := cryptoutils.ParseBundlePEM(append(append([]byte{}, certPEM...), keyPEM...))
	require.NoError(t, err)

	return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: key}
}

func testRSACertificate(t *testing.T) *interfaces.ClientCertificate {
	t.Helper()

	certPEM, keyPEM, err := cryptoutils.GenerateRSACertificate("token-rsa-test")
	require.NoError(t, err)
	cert, key, err := cryptoutils.ParseBundlePEM(append(append([]byte{}, certPEM...), keyPEM...))
	require.NoError(t, err)

	return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: key}
}

func TestTokenClientAssertion(t *testing.T) {
	cert := testCertificate(t)

	var capturedForm map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tenant-1/oauth2/v2.0/token", r.URL.Path)
		require.NoError(t, r.ParseForm())

		capturedForm = map[string]string{}
		for key := range r.PostForm {
			capturedForm[key] = r.PostForm.Get(key)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: "test-access-token",
			TokenType:   "Bearer",
			ExpiresIn:   3599,
		})
	}))
	defer server.Close()

	client := newTokenClient(server.URL, "tenant-1", "client-1", cert, testLogger())

	token, err := client.Token(context.Background(), "https://contoso.example.com/.default")
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", token)

	// Grant parameters
	assert.Equal(t, "client_credentials", capturedForm["grant_type"])
	assert.Equal(t, "client-1", capturedForm["client_id"])
	assert.Equal(t, "https://contoso.example.com/.default", capturedForm["scope"])
	assert.Equal(t, clientAssertionType, capturedForm["client_assertion_type"])

	// The assertion must verify against the certificate's public key
	assertion := capturedForm["client_assertion"]
	require.NotEmpty(t, assertion)

	parsed, err := jwt.Parse(assertion, func(token *jwt.Token) (interface{}, error) {
		return cert.Leaf.PublicKey, nil
	}, jwt.WithValidMethods([]string{"ES256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "client-1", claims["iss"])
	assert.Equal(t, "client-1", claims["sub"])
	assert.Equal(t, server.URL+"/tenant-1/oauth2/v2.0/token", claims["aud"])
	assert.NotEmpty(t, claims["jti"])

	// x5t header carries the certificate thumbprint
	sum := sha1.Sum(cert.Leaf.Raw)
	assert.Equal(t, base64.RawURLEncoding.EncodeToString(sum[:]), parsed.Header["x5t"])
}

func TestTokenCacheReuse(t *testing.T) {
	cert := testCertificate(t)

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "cached-token", ExpiresIn: 3599})
	}))
	defer server.Close()

	client := newTokenClient(server.URL, "tenant-1", "client-1", cert, testLogger())

	for i := 0; i < 3; i++ {
		token, err := client.Token(context.Background(), "https://a.example.com/.default")
		require.NoError(t, err)
		assert.Equal(t, "cached-token", token)
	}
	assert.Equal(t, 1, requests)

	// A different scope is a different cache entry
	_, err := client.Token(context.Background(), "https://b.example.com/.default")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestTokenCacheRenewal(t *testing.T) {
	cert := testCertificate(t)

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "short-token", ExpiresIn: 300})
	}))
	defer server.Close()

	client := newTokenClient(server.URL, "tenant-1", "client-1", cert, testLogger())

	base := time.Now()
	client.now = func() time.Time { return base }

	_, err := client.Token(context.Background(), "https://a.example.com/.default")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	// Still fresh: expiry minus the renewal window is ahead
	client.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = client.Token(context.Background(), "https://a.example.com/.default")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)

	// Inside the renewal window: the token is refreshed
	client.now = func() time.Time { return base.Add(4 * time.Minute) }
	_, err = client.Token(context.Background(), "https://a.example.com/.default")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestTokenRequestRejected(t *testing.T) {
	cert := testCertificate(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(tokenErrorResponse{
			Code:        "invalid_client",
			Description: "certificate not registered for this application",
		})
	}))
	defer server.Close()

	client := newTokenClient(server.URL, "tenant-1", "client-1", cert, testLogger())

	_, err := client.Token(context.Background(), "https://a.example.com/.default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_client")
	assert.Contains(t, err.Error(), "certificate not registered")
	assert.Contains(t, err.Error(), "401")
}

func TestSigningMethodFor(t *testing.T) {
	ecCert := testCertificate(t)
	require.IsType(t, &ecdsa.PrivateKey{}, ecCert.PrivateKey)
	method, err := signingMethodFor(ecCert)
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodES256, method)

	rsaCert := testRSACertificate(t)
	require.IsType(t, &rsa.PrivateKey{}, rsaCert.PrivateKey)
	method, err = signingMethodFor(rsaCert)
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodRS256, method)
}

func TestScopeFor(t *testing.T) {
	scope, err := scopeFor(interfaces.SiteURL("https://contoso.example.com/sites/marketing"))
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.example.com/.default", scope)

	scope, err = scopeFor(interfaces.SiteURL("http://localhost:8080/sites/a/"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/.default", scope)

	_, err = scopeFor(interfaces.SiteURL("no-scheme"))
	assert.Error(t, err)
}

func TestDefaultAuthority(t *testing.T) {
	cert := testCertificate(t)
	client := newTokenClient("", "tenant-1", "client-1", cert, testLogger())
	assert.Equal(t, "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/token", client.tokenURL())
}
