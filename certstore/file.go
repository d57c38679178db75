package certstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sitewarden/sitecloner/cryptoutils"
	"github.com/sitewarden/sitecloner/interfaces"
)

// FileStore implements a certificate store backed by a local directory.
// Certificates are matched by computing thumbprints of the files found there.
type FileStore struct {
	baseDir     string
	password    string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a new file certificate store over the specified
// directory. The password unlocks PKCS#12 bundles; PEM files are read as-is.
func NewFileStore(baseDir, password string, log *slog.Logger) (*FileStore, error) {
	// Ensure the directory exists so Available reflects configuration, not timing
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		password:    password,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Lookup scans the directory for a certificate matching the thumbprint.
// PEM bundles, certificate/key file pairs and PKCS#12 bundles are supported;
// the first match wins. Returns ErrCertificateNotFound when nothing matches.
func (s *FileStore) Lookup(ctx context.Context, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cert, err := s.loadEntry(entry.Name(), thumbprint)
		if err != nil {
			s.log.Debug("Skipping store entry",
				slog.String("file", entry.Name()),
				"err", err)
			continue
		}
		if cert != nil {
			s.log.Debug("Resolved certificate from file",
				slog.String("file", entry.Name()),
				slog.String("thumbprint", thumbprint.String()))
			return cert, nil
		}
	}

	return nil, fmt.Errorf("%w: no file matches thumbprint %s", interfaces.ErrCertificateNotFound, thumbprint)
}

// loadEntry loads one directory entry and returns the certificate when its
// thumbprint matches, nil when it does not, and an error when the entry
// cannot be used at all.
func (s *FileStore) loadEntry(name string, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	fullPath := filepath.Join(s.baseDir, name)

	switch strings.ToLower(filepath.Ext(name)) {
	case ".pfx", ".p12":
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundle: %w", err)
		}
		cert, key, err := cryptoutils.ParsePKCS12(data, s.password)
		if err != nil {
			return nil, err
		}
		if !interfaces.ComputeThumbprint(cert.Raw).Equal(thumbprint) {
			return nil, nil
		}
		return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: key}, nil

	case ".pem", ".crt":
		data, err := os.ReadFile(fullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read certificate: %w", err)
		}
		cert, err := cryptoutils.ParseCertificatePEM(data)
		if err != nil {
			return nil, err
		}
		if !interfaces.ComputeThumbprint(cert.Raw).Equal(thumbprint) {
			return nil, nil
		}

		// Key in the same file, or in a sibling .key file
		key, err := cryptoutils.ParsePrivateKeyPEM(data)
		if err != nil {
			keyPath := strings.TrimSuffix(fullPath, filepath.Ext(fullPath)) + ".key"
			keyData, readErr := os.ReadFile(keyPath)
			if readErr != nil {
				return nil, fmt.Errorf("certificate matches but no private key found: %w", readErr)
			}
			key, err = cryptoutils.ParsePrivateKeyPEM(keyData)
			if err != nil {
				return nil, err
			}
		}
		if !cryptoutils.KeyMatchesCertificate(cert, key) {
			return nil, fmt.Errorf("private key does not match certificate %s", name)
		}
		return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: key}, nil

	default:
		return nil, nil
	}
}

// Available checks if the store directory is accessible.
func (s *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(s.baseDir)
	if err != nil {
		s.log.Debug("File store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}
