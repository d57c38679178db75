package provisioning

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sitewarden/sitecloner/interfaces"
)

// DefaultAuthority is the identity provider used when no authority is
// configured.
const DefaultAuthority = "https://login.microsoftonline.com"

const (
	// assertionLifetime is the validity window of a signed client assertion.
	assertionLifetime = 10 * time.Minute

	// renewBefore is how long before expiry a cached access token is
	// refreshed. Long-running operations re-read the cache per request, so
	// the window just has to cover one request setup.
	renewBefore = 2 * time.Minute

	clientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

	maxTokenErrorBody = 4 * 1024
)

// tokenClient acquires app-only access tokens through the OAuth2 client
// credentials grant with a JWT client assertion signed by the client
// certificate. Tokens are cached per scope and renewed shortly before expiry.
type tokenClient struct {
	authority string
	tenantID  string
	clientID  string
	cert      *interfaces.ClientCertificate
	client    *http.Client
	log       *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cachedToken
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// newTokenClient creates a token client for one certificate and identity.
func newTokenClient(authority, tenantID, clientID string, cert *interfaces.ClientCertificate, log *slog.Logger) *tokenClient {
	if authority == "" {
		authority = DefaultAuthority
	}

	return &tokenClient{
		authority: strings.TrimSuffix(authority, "/"),
		tenantID:  tenantID,
		clientID:  clientID,
		cert:      cert,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       log,
		now:       time.Now,
		cache:     make(map[string]cachedToken),
	}
}

// tokenURL returns the tenant's token endpoint.
func (c *tokenClient) tokenURL() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.authority, c.tenantID)
}

// Token returns a bearer token for the scope, served from cache while fresh.
func (c *tokenClient) Token(ctx context.Context, scope string) (string, error) {
	c.mu.Lock()
	if cached, ok := c.cache[scope]; ok && c.now().Before(cached.expiresAt.Add(-renewBefore)) {
		c.mu.Unlock()
		return cached.accessToken, nil
	}
	c.mu.Unlock()

	acquired, err := c.requestToken(ctx, scope)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[scope] = acquired
	c.mu.Unlock()

	return acquired.accessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type tokenErrorResponse struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// requestToken performs the client credentials grant against the token
// endpoint.
func (c *tokenClient) requestToken(ctx context.Context, scope string) (cachedToken, error) {
	start := time.Now()

	assertion, err := c.signAssertion()
	if err != nil {
		return cachedToken{}, fmt.Errorf("failed to sign client assertion: %w", err)
	}

	form := url.Values{
		"grant_type":            {"client_credentials"},
		"client_id":             {c.clientID},
		"scope":                 {scope},
		"client_assertion_type": {clientAssertionType},
		"client_assertion":      {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return cachedToken{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return cachedToken{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxTokenErrorBody))
		var remote tokenErrorResponse
		if json.Unmarshal(body, &remote) == nil && remote.Code != "" {
			return cachedToken{}, fmt.Errorf("token request rejected (status %d): %s: %s", resp.StatusCode, remote.Code, remote.Description)
		}
		return cachedToken{}, fmt.Errorf("token request rejected (status %d): %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return cachedToken{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return cachedToken{}, fmt.Errorf("token response carries no access token")
	}

	c.log.Debug("Acquired access token",
		slog.String("scope", scope),
		slog.Int("expires_in", token.ExpiresIn),
		slog.Duration("duration", time.Since(start)))

	return cachedToken{
		accessToken: token.AccessToken,
		expiresAt:   c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, nil
}

// signAssertion builds the JWT client assertion: issuer and subject are the
// client ID, the audience is the token endpoint, and the x5t header carries
// the certificate thumbprint so the identity provider can pick the right
// registered certificate.
func (c *tokenClient) signAssertion() (string, error) {
	now := c.now().UTC()

	claims := jwt.MapClaims{
		"iss": c.clientID,
		"sub": c.clientID,
		"aud": c.tokenURL(),
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}

	method, err := signingMethodFor(c.cert)
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(method, claims)
	sum := sha1.Sum(c.cert.Leaf.Raw)
	token.Header["x5t"] = base64.RawURLEncoding.EncodeToString(sum[:])

	return token.SignedString(c.cert.PrivateKey)
}

// signingMethodFor picks the JWS algorithm matching the certificate key.
func signingMethodFor(cert *interfaces.ClientCertificate) (jwt.SigningMethod, error) {
	switch key := cert.PrivateKey.(type) {
	case *rsa.PrivateKey:
		return jwt.SigningMethodRS256, nil
	case *ecdsa.PrivateKey:
		switch key.Curve {
		case elliptic.P256():
			return jwt.SigningMethodES256, nil
		case elliptic.P384():
			return jwt.SigningMethodES384, nil
		case elliptic.P521():
			return jwt.SigningMethodES512, nil
		default:
			return nil, fmt.Errorf("unsupported ECDSA curve %s", key.Curve.Params().Name)
		}
	default:
		return nil, fmt.Errorf("unsupported private key type %T", cert.PrivateKey)
	}
}

// scopeFor derives the resource scope for a site: all paths on the site's
// host share one scope.
func scopeFor(site interfaces.SiteURL) (string, error) {
	parsed, err := site.Parse()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s/.default", parsed.Scheme, parsed.Host), nil
}
