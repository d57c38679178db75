package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.uber.org/atomic"

	"github.com/sitewarden/sitecloner/interfaces"
)

const maxErrorBody = 4 * 1024

// EngineConfig configures the provisioning engine.
type EngineConfig struct {
	// Identity is the app-only principal all sessions authenticate as.
	Identity interfaces.AppIdentity

	// Authority is the identity provider base URL. Empty means
	// DefaultAuthority.
	Authority string

	// ResolverAddr is the DNS resolver (host:port) used to preflight site
	// hosts before opening sessions. Empty disables the preflight.
	ResolverAddr string

	// Log is the structured logger.
	Log *slog.Logger
}

// Engine opens authenticated sessions against remote sites and drives
// template extraction and application through them. It implements
// interfaces.SessionFactory, interfaces.TemplateExtractor and
// interfaces.TemplateApplier.
type Engine struct {
	identity     interfaces.AppIdentity
	authority    string
	resolverAddr string
	log          *slog.Logger
}

// NewEngine creates a provisioning engine.
func NewEngine(cfg *EngineConfig) *Engine {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		identity:     cfg.Identity,
		authority:    cfg.Authority,
		resolverAddr: cfg.ResolverAddr,
		log:          log,
	}
}

// Open establishes an authenticated session to the site: optional DNS
// preflight of the host, app-only token acquisition with the certificate,
// then a metadata round trip that proves the session works. The returned
// session must be closed by the caller on every path.
func (e *Engine) Open(ctx context.Context, site interfaces.SiteURL, cert *interfaces.ClientCertificate) (interfaces.Session, error) {
	start := time.Now()

	parsed, err := site.Parse()
	if err != nil {
		return nil, err
	}
	if err := cert.Validate(); err != nil {
		return nil, fmt.Errorf("unusable client certificate: %w", err)
	}

	if e.resolverAddr != "" {
		if err := resolveHost(ctx, parsed.Hostname(), e.resolverAddr); err != nil {
			return nil, fmt.Errorf("site host did not resolve: %w", err)
		}
	}

	scope, err := scopeFor(site)
	if err != nil {
		return nil, err
	}

	tokens := newTokenClient(e.authority, e.identity.TenantID, e.identity.ClientID, cert, e.log)

	session := &Session{
		site: site,
		// No client timeout: template operations legitimately run for a very
		// long time, cancellation flows through request contexts.
		client: &http.Client{
			Timeout: 0,
			Transport: &bearerTransport{
				tokens: tokens,
				scope:  scope,
				base:   http.DefaultTransport,
			},
		},
		log: e.log,
	}

	info, err := session.fetchInfo(ctx)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("session validation failed for %s: %w", site, err)
	}
	session.info = info

	e.log.Info("Session opened",
		slog.String("site", info.URL.String()),
		slog.String("title", info.Title),
		slog.Duration("duration", time.Since(start)))

	return session, nil
}

// Session is an authenticated handle to one remote site. Sessions are bound
// to a single clone request and are never shared.
type Session struct {
	site   interfaces.SiteURL
	info   interfaces.SiteInfo
	client *http.Client
	log    *slog.Logger
	closed atomic.Bool
}

// Site returns the base URL this session is bound to.
func (s *Session) Site() interfaces.SiteURL {
	return s.site
}

// Info returns the site metadata captured by the validation round trip.
func (s *Session) Info() interfaces.SiteInfo {
	return s.info
}

// Do executes a request with the session's credentials applied.
// Returns ErrSessionClosed once the session has been released.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	if s.closed.Load() {
		return nil, interfaces.ErrSessionClosed
	}
	return s.client.Do(req)
}

// Close releases the session. Safe to call multiple times.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.client.CloseIdleConnections()
	s.log.Debug("Session closed", slog.String("site", s.site.String()))
	return nil
}

// fetchInfo performs the validation round trip: reading the site's URL and
// title proves both the token and the site are usable.
func (s *Session) fetchInfo(ctx context.Context) (interfaces.SiteInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL(s.site, "/api/web"), nil)
	if err != nil {
		return interfaces.SiteInfo{}, fmt.Errorf("failed to create site metadata request: %w", err)
	}

	resp, err := s.Do(req)
	if err != nil {
		return interfaces.SiteInfo{}, fmt.Errorf("site metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return interfaces.SiteInfo{}, fmt.Errorf("site metadata request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info interfaces.SiteInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return interfaces.SiteInfo{}, fmt.Errorf("failed to decode site metadata: %w", err)
	}

	return info, nil
}

// bearerTransport injects a fresh bearer token into every request going
// through the session, renewing it when the cached one nears expiry.
type bearerTransport struct {
	tokens *tokenClient
	scope  string
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := t.tokens.Token(req.Context(), t.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire access token: %w", err)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(clone)
}

// endpointURL joins a site base URL and an API path.
func endpointURL(site interfaces.SiteURL, path string) string {
	return strings.TrimSuffix(site.String(), "/") + path
}
