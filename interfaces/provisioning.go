package interfaces

import (
	"context"
	"errors"
	"net/http"
)

// Pipeline stage tags. The handler prefixes error responses with the tag of
// the stage that failed.
const (
	StageCertificate = "CERTIFICATE ERROR"
	StageExtract     = "EXTRACT ERROR"
	StageApply       = "APPLY ERROR"
)

// StageError tags an underlying failure with the pipeline stage it occurred
// in. The tag becomes the prefix of the HTTP error response body.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

var (
	// ErrEmptyTemplate is returned when extraction completes without producing
	// a usable artifact.
	ErrEmptyTemplate = errors.New("extracted template is empty")

	// ErrSessionClosed is returned when a request is attempted on a session
	// that has already been released.
	ErrSessionClosed = errors.New("session is closed")
)

// Session is an authenticated handle to one remote site. Sessions are scoped
// to a single request pipeline and must be released on every exit path.
type Session interface {
	// Site returns the base URL this session is bound to.
	Site() SiteURL

	// Info returns the site metadata captured by the validation round trip.
	Info() SiteInfo

	// Do executes an HTTP request with the session's credentials applied.
	// The request URL must be absolute. Returns ErrSessionClosed after Close.
	Do(req *http.Request) (*http.Response, error)

	// Close releases the session. Safe to call multiple times.
	Close() error
}

// SessionFactory opens authenticated sessions to remote sites.
type SessionFactory interface {
	// Open establishes a session to the site using app-only certificate
	// credentials and validates it with a metadata round trip before
	// returning it. Callers must Close the returned session.
	Open(ctx context.Context, site SiteURL, cert *ClientCertificate) (Session, error)
}

// TemplateExtractor captures provisioning templates from source sites.
type TemplateExtractor interface {
	// Extract captures the site's provisioning template, forwarding progress
	// callbacks to the reporter. An empty result is an error.
	Extract(ctx context.Context, session Session, progress ProgressReporter) (ProvisioningTemplate, error)
}

// TemplateApplier provisions templates onto target sites.
type TemplateApplier interface {
	// Apply provisions the template onto the session's site, forwarding
	// progress callbacks to the reporter. Pre-existing navigation on the
	// target is cleared first. There is no rollback on failure.
	Apply(ctx context.Context, session Session, template ProvisioningTemplate, progress ProgressReporter) error
}

// ProgressReporter receives step-by-step progress callbacks emitted during
// extraction and application.
type ProgressReporter interface {
	// Progress reports one step. Total may be zero when unknown.
	Progress(message string, step int, total int)
}

// ProgressFunc adapts a function to the ProgressReporter interface.
type ProgressFunc func(message string, step int, total int)

// Progress calls the wrapped function.
func (f ProgressFunc) Progress(message string, step int, total int) {
	f(message, step, total)
}
