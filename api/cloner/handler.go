package cloner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitewarden/sitecloner/api"
	"github.com/sitewarden/sitecloner/interfaces"
	"github.com/sitewarden/sitecloner/metrics"
)

const (
	// maxBodySize is the maximum allowed request body size (1MB).
	maxBodySize = 1024 * 1024
)

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Handler processes HTTP requests for the site cloning service. It resolves
// the service's client certificate from the trust store and drives template
// extraction and application through the injected capabilities.
type Handler struct {
	identity  interfaces.AppIdentity
	certStore interfaces.CertificateStore
	sessions  interfaces.SessionFactory
	extractor interfaces.TemplateExtractor
	applier   interfaces.TemplateApplier
	progress  interfaces.ProgressReporter
	log       *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - identity: App principal whose certificate authenticates all sessions
//   - certStore: Trust store resolving certificates by thumbprint
//   - sessions: Factory opening authenticated sessions to sites
//   - extractor: Capability extracting provisioning templates
//   - applier: Capability applying provisioning templates
//   - progress: Observer for remote progress events; nil logs them
//   - log: Structured logger for operational insights
//
// Returns a configured Handler instance.
func NewHandler(identity interfaces.AppIdentity, certStore interfaces.CertificateStore, sessions interfaces.SessionFactory, extractor interfaces.TemplateExtractor, applier interfaces.TemplateApplier, progress interfaces.ProgressReporter, log *slog.Logger) *Handler {
	if progress == nil {
		progress = NewLogReporter(log)
	}

	return &Handler{
		identity:  identity,
		certStore: certStore,
		sessions:  sessions,
		extractor: extractor,
		applier:   applier,
		progress:  progress,
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/clone", h.HandleClone)
}

// HandleClone processes a clone request: it copies the provisioning template
// of the source site onto the target site.
//
// URL format: POST /api/clone
//
// Request body: JSON, see api.CloneRequest
//
// Response: empty body with status 200 once the template has been applied.
// A request without both site URLs gets a 400 with a fixed guidance message.
// Pipeline failures get a 500 whose body is the stage-tagged error message.
func (h *Handler) HandleClone(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req api.CloneRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		h.log.Error("Failed to decode clone request", "err", err)
		metrics.IncCloneRejected()
		http.Error(w, api.MissingSiteURLsMessage, http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		metrics.IncCloneRejected()
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.handleClone(r.Context(), &req); err != nil {
		h.log.Error("Clone failed", "err", err,
			slog.String("source", req.SourceURL.String()),
			slog.String("target", req.TargetURL.String()))
		metrics.IncCloneFailure()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	metrics.IncCloneSuccess()
	metrics.ObserveCloneDuration(start)
	w.WriteHeader(http.StatusOK)
}

// handleClone runs the clone pipeline. This is the core business logic
// implementation for HandleClone.
//
// The pipeline has three stages, each mapped to its own error tag:
//
//  1. Resolve the client certificate matching the configured thumbprint
//  2. Open a session to the source site and extract its template
//  3. Open a session to the target site and apply the template
//
// The source session is always released before the target session is
// opened. There is no rollback: a target site that fails mid-apply is left
// as the remote side left it, and the error says so.
func (h *Handler) handleClone(ctx context.Context, req *api.CloneRequest) error {
	start := time.Now()

	cert, err := h.certStore.Lookup(ctx, h.identity.Thumbprint)
	if err != nil {
		return &interfaces.StageError{
			Stage: interfaces.StageCertificate,
			Err:   fmt.Errorf("no usable certificate for thumbprint %s: %w", h.identity.Thumbprint, err),
		}
	}

	template, err := h.extractTemplate(ctx, req.SourceURL, cert)
	if err != nil {
		return &interfaces.StageError{Stage: interfaces.StageExtract, Err: err}
	}

	if err := h.applyTemplate(ctx, req.TargetURL, cert, template); err != nil {
		return &interfaces.StageError{Stage: interfaces.StageApply, Err: err}
	}

	h.log.Info("Clone completed",
		slog.String("source", req.SourceURL.String()),
		slog.String("target", req.TargetURL.String()),
		slog.Int("template_size", len(template)),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// extractTemplate opens a session to the source site and pulls its
// provisioning template. The session is released before returning, so the
// target session never overlaps with it.
func (h *Handler) extractTemplate(ctx context.Context, site interfaces.SiteURL, cert *interfaces.ClientCertificate) (interfaces.ProvisioningTemplate, error) {
	session, err := h.sessions.Open(ctx, site, cert)
	if err != nil {
		return nil, fmt.Errorf("could not connect to source site %s: %w", site, err)
	}
	defer session.Close()

	h.log.Info("Connected to source site",
		slog.String("site", site.String()),
		slog.String("title", session.Info().Title))

	return h.extractor.Extract(ctx, session, h.progress)
}

// applyTemplate opens a session to the target site and applies the template
// there, releasing the session on every path.
func (h *Handler) applyTemplate(ctx context.Context, site interfaces.SiteURL, cert *interfaces.ClientCertificate, template interfaces.ProvisioningTemplate) error {
	session, err := h.sessions.Open(ctx, site, cert)
	if err != nil {
		return fmt.Errorf("could not connect to target site %s: %w", site, err)
	}
	defer session.Close()

	h.log.Info("Connected to target site",
		slog.String("site", site.String()),
		slog.String("title", session.Info().Title))

	return h.applier.Apply(ctx, session, template, h.progress)
}
