package api

import (
	"errors"

	"github.com/sitewarden/sitecloner/interfaces"
)

// MissingSiteURLsMessage is returned with a 400 status whenever a clone
// request arrives without both site URLs. The wording is fixed: callers
// match on it.
const MissingSiteURLsMessage = "Please pass sourceUrl and targetUrl in the request body"

// FunctionKeyHeader carries the shared access key on authenticated requests.
// CodeQueryParam is the query string fallback for callers that cannot set
// headers.
const (
	FunctionKeyHeader = "x-functions-key"
	CodeQueryParam    = "code"
)

// CloneRequest is the body of a clone request: copy the provisioning
// template of the source site onto the target site.
type CloneRequest struct {
	// SourceURL is the site the template is extracted from.
	SourceURL interfaces.SiteURL `json:"sourceUrl"`

	// TargetURL is the site the template is applied to.
	TargetURL interfaces.SiteURL `json:"targetUrl"`
}

// Validate checks that both site URLs are present.
func (r *CloneRequest) Validate() error {
	if r.SourceURL == "" || r.TargetURL == "" {
		return errors.New(MissingSiteURLsMessage)
	}
	return nil
}

// CloneProvider abstracts the clone endpoint for callers.
type CloneProvider interface {
	// Clone replicates the source site's provisioning template onto the
	// target site. A nil error means the template was fully applied.
	Clone(sourceURL, targetURL interfaces.SiteURL) error
}
