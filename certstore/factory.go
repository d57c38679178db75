package certstore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sitewarden/sitecloner/interfaces"
)

// CertStoreFactory creates certificate stores from location URIs and manages
// multi-store configurations for redundant trust stores.
type CertStoreFactory struct {
	log *slog.Logger
}

// NewCertStoreFactory creates a new factory instance that can create
// certificate stores.
func NewCertStoreFactory(logger *slog.Logger) *CertStoreFactory {
	return &CertStoreFactory{
		log: logger,
	}
}

// StoreFor creates a certificate store from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - file:// - Local filesystem directory of PEM and PKCS#12 files
//   - vault:// - HashiCorp Vault KV v2 store
//   - s3:// - Amazon S3 or compatible object storage
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *CertStoreFactory) StoreFor(location interfaces.StoreLocation) (interfaces.CertificateStore, error) {
	switch strings.ToLower(location.Scheme) {
	case "file":
		return sf.createFileStore(location)
	case "vault":
		return sf.createVaultStore(location)
	case "s3":
		return sf.createS3Store(location)
	default:
		return nil, fmt.Errorf("%w: unsupported store scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiStore creates a multi-store from a list of location URIs.
// The multi-store queries all valid stores in order and resolves a thumbprint
// from the first one that holds it. Returns an error if no valid stores could
// be created from the provided URIs.
func (sf *CertStoreFactory) CreateMultiStore(locations []interfaces.StoreLocation) (interfaces.CertificateStore, error) {
	stores := make([]interfaces.CertificateStore, 0, len(locations))

	for _, location := range locations {
		store, err := sf.StoreFor(location)
		if err != nil {
			sf.log.Warn("Failed to create certificate store",
				"err", err,
				slog.String("locationURI", location.String()))
			continue
		}
		stores = append(stores, store)
	}

	if len(stores) == 0 {
		return nil, fmt.Errorf("no valid certificate stores created")
	}

	return NewMultiStore(stores, sf.log), nil
}

// createFileStore creates a file system certificate store.
// URI format: file:///absolute/path/?password=changeit
// The password parameter unlocks PKCS#12 bundles in the directory.
func (sf *CertStoreFactory) createFileStore(location interfaces.StoreLocation) (interfaces.CertificateStore, error) {
	sf.log.Debug("Creating file store", slog.String("uri", location.String()))

	// Get the path, handling relative vs absolute paths
	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI %q", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileStore(path, location.GetParam("password"), sf.log)
}

// createVaultStore creates a Vault KV v2 certificate store.
// URI format: vault://host:port/mount/path?scheme=http&token=...
// The first path segment is the KV mount, the rest is the path within it.
// The token falls back to the VAULT_TOKEN environment variable.
func (sf *CertStoreFactory) createVaultStore(location interfaces.StoreLocation) (interfaces.CertificateStore, error) {
	sf.log.Debug("Creating Vault store", slog.String("uri", location.String()))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: missing Vault host in %q", interfaces.ErrInvalidLocationURI, location.String())
	}

	scheme := location.GetParam("scheme")
	if scheme == "" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, location.Host)

	segments := strings.SplitN(strings.Trim(location.Path, "/"), "/", 2)
	if segments[0] == "" {
		return nil, fmt.Errorf("%w: missing KV mount in Vault URI %q", interfaces.ErrInvalidLocationURI, location.String())
	}
	mountPath := segments[0]
	dataPath := ""
	if len(segments) > 1 {
		dataPath = segments[1]
	}

	token := location.GetParam("token")
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}

	return NewVaultStore(address, mountPath, dataPath, token, sf.log)
}

// createS3Store creates an S3 or S3-compatible certificate store.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix?region=us-west-2&endpoint=custom.s3.com
// Without embedded credentials the default AWS credential chain is used.
func (sf *CertStoreFactory) createS3Store(location interfaces.StoreLocation) (interfaces.CertificateStore, error) {
	sf.log.Debug("Creating S3 store", slog.String("uri", location.String()))

	bucketName := location.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing bucket name in S3 URI %q", interfaces.ErrInvalidLocationURI, location.String())
	}

	prefix := strings.TrimPrefix(location.Path, "/")

	region := location.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}
	endpoint := location.GetParam("endpoint")

	var accessKey, secretKey string
	if location.Auth != "" {
		accessKey, secretKey, _ = strings.Cut(location.Auth, ":")
	}

	return NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey, sf.log)
}
