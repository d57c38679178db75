package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// StoreLocation represents a URI for a certificate store.
type StoreLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewStoreLocation creates a new store location from a URI string with validation.
func NewStoreLocation(uri string) (StoreLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StoreLocation{}, fmt.Errorf("invalid URI format: %w", err)
	}

	// Validate scheme is supported
	scheme := parsed.Scheme
	switch scheme {
	case "file", "vault", "s3":
		// Valid scheme
	default:
		return StoreLocation{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidLocationURI, scheme)
	}

	// Parse authentication info if present
	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StoreLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc StoreLocation) String() string {
	return loc.Raw
}

// IsFile checks if this is a file system store location.
func (loc StoreLocation) IsFile() bool {
	return loc.Scheme == "file"
}

// IsVault checks if this is a Vault store location.
func (loc StoreLocation) IsVault() bool {
	return loc.Scheme == "vault"
}

// IsS3 checks if this is an S3 store location.
func (loc StoreLocation) IsS3() bool {
	return loc.Scheme == "s3"
}

// GetParam returns a query parameter value.
func (loc StoreLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc StoreLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrCertificateNotFound is returned when no stored certificate matches the
	// requested thumbprint.
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrStoreUnavailable is returned when a certificate store is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrStoreUnavailable = errors.New("certificate store unavailable")

	// ErrInvalidLocationURI is returned when a store location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid store location URI")
)

// CertificateStore resolves client certificates by thumbprint.
type CertificateStore interface {
	// Lookup resolves the certificate and private key matching the thumbprint.
	// Returns ErrCertificateNotFound when nothing matches.
	Lookup(ctx context.Context, thumbprint Thumbprint) (*ClientCertificate, error)

	// Available checks if the store is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this store.
	LocationURI() string
}

// CertStoreFactory creates certificate stores.
type CertStoreFactory interface {
	// StoreFor creates a store from URI.
	// Supports file://, vault://, s3://
	StoreFor(location StoreLocation) (CertificateStore, error)

	// CreateMultiStore creates an aggregated certificate store that queries
	// locations in order and returns the first match.
	CreateMultiStore(locations []StoreLocation) (CertificateStore, error)
}
