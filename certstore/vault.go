package certstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"github.com/sitewarden/sitecloner/cryptoutils"
	"github.com/sitewarden/sitecloner/interfaces"
)

// VaultStore implements a certificate store using HashiCorp Vault. Each
// certificate lives in one KV v2 entry keyed by thumbprint, with PEM-encoded
// "certificate" and "private_key" fields.
type VaultStore struct {
	client      *api.Client
	mountPath   string
	dataPath    string
	log         *slog.Logger
	locationURI string
}

// NewVaultStore creates a new Vault certificate store using token
// authentication.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount (e.g. "sitecloner")
//   - token: Vault token; usually taken from the VAULT_TOKEN environment variable
//   - log: Structured logger for operational insights
func NewVaultStore(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultStore, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{
		Timeout: 30 * time.Second,
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	// Ensure paths are properly formatted
	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultStore{
		client:      client,
		mountPath:   mountPath,
		dataPath:    dataPath,
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Lookup reads the KV v2 entry for the thumbprint and assembles the
// certificate from its PEM fields. Returns ErrCertificateNotFound when the
// entry does not exist.
func (s *VaultStore) Lookup(ctx context.Context, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	start := time.Now()
	path := s.entryPath(thumbprint)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Error("Failed to read from Vault",
			slog.String("path", path),
			slog.String("thumbprint", thumbprint.String()),
			"err", err)
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStoreUnavailable, err)
	}

	if secret == nil || secret.Data == nil {
		s.log.Debug("Certificate not found in Vault",
			slog.String("path", path),
			slog.String("thumbprint", thumbprint.String()))
		return nil, fmt.Errorf("%w: no Vault entry for thumbprint %s", interfaces.ErrCertificateNotFound, thumbprint)
	}

	// Extract fields from the response (KV v2 format)
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	certPEM, ok := data["certificate"].(string)
	if !ok {
		return nil, fmt.Errorf("certificate field missing in Vault entry %s", path)
	}
	keyPEM, ok := data["private_key"].(string)
	if !ok {
		return nil, fmt.Errorf("private_key field missing in Vault entry %s", path)
	}

	cert, err := cryptoutils.ParseCertificatePEM([]byte(certPEM))
	if err != nil {
		return nil, fmt.Errorf("invalid certificate in Vault entry %s: %w", path, err)
	}
	key, err := cryptoutils.ParsePrivateKeyPEM([]byte(keyPEM))
	if err != nil {
		return nil, fmt.Errorf("invalid private key in Vault entry %s: %w", path, err)
	}

	// The entry is keyed by thumbprint; verify the content agrees
	if computed := interfaces.ComputeThumbprint(cert.Raw); !computed.Equal(thumbprint) {
		s.log.Warn("Vault entry thumbprint mismatch",
			slog.String("path", path),
			slog.String("expected", thumbprint.String()),
			slog.String("actual", computed.String()))
		return nil, fmt.Errorf("vault entry %s holds certificate with thumbprint %s, expected %s", path, computed, thumbprint)
	}
	if !cryptoutils.KeyMatchesCertificate(cert, key) {
		return nil, fmt.Errorf("private key does not match certificate in Vault entry %s", path)
	}

	s.log.Info("Resolved certificate from Vault",
		slog.String("thumbprint", thumbprint.String()),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.ClientCertificate{Leaf: cert, PrivateKey: key}, nil
}

// Available checks if the Vault store is accessible.
// It uses the health endpoint to verify that Vault is initialized and unsealed.
func (s *VaultStore) Available(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := s.client.Sys().HealthWithContext(healthCtx)
	if err != nil {
		s.log.Debug("Vault health check failed", "err", err)
		return false
	}

	if !health.Initialized || health.Sealed {
		s.log.Debug("Vault is not available",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (s *VaultStore) Name() string {
	return fmt.Sprintf("vault-%s-%s", s.mountPath, s.dataPath)
}

// LocationURI returns the URI that identifies this store.
func (s *VaultStore) LocationURI() string {
	return s.locationURI
}

// entryPath builds the KV v2 read path for a thumbprint.
func (s *VaultStore) entryPath(thumbprint interfaces.Thumbprint) string {
	if s.dataPath == "" {
		return fmt.Sprintf("%s/data/%s", s.mountPath, thumbprint)
	}
	return fmt.Sprintf("%s/data/%s/%s", s.mountPath, s.dataPath, thumbprint)
}
