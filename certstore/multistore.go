package certstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sitewarden/sitecloner/interfaces"
)

// MultiStore implements interfaces.CertificateStore over multiple stores
// with fallback. Stores are queried in order and the first match wins.
type MultiStore struct {
	stores []interfaces.CertificateStore
	log    *slog.Logger
}

// NewMultiStore creates a new multi-store with fallback.
func NewMultiStore(stores []interfaces.CertificateStore, logger *slog.Logger) *MultiStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStore{
		stores: stores,
		log:    logger,
	}
}

// Lookup queries each available store in order and returns the first match.
// When every store misses, the result is ErrCertificateNotFound; other
// failures are aggregated.
func (m *MultiStore) Lookup(ctx context.Context, thumbprint interfaces.Thumbprint) (*interfaces.ClientCertificate, error) {
	start := time.Now()
	var errs []error
	onlyMisses := true

	for _, store := range m.stores {
		if !store.Available(ctx) {
			m.log.Debug("Certificate store unavailable",
				slog.String("store_name", store.Name()),
				slog.String("thumbprint", thumbprint.String()))
			continue
		}

		cert, err := store.Lookup(ctx, thumbprint)
		if err == nil {
			m.log.Info("Successfully resolved certificate",
				slog.String("store_name", store.Name()),
				slog.String("thumbprint", thumbprint.String()),
				slog.Duration("duration", time.Since(start)))
			return cert, nil
		}

		if !errors.Is(err, interfaces.ErrCertificateNotFound) {
			onlyMisses = false
		}
		errs = append(errs, fmt.Errorf("%s: %w", store.Name(), err))
		m.log.Debug("Failed to resolve from store",
			slog.String("store_name", store.Name()),
			slog.String("thumbprint", thumbprint.String()),
			"err", err)
	}

	m.log.Error("All stores failed to resolve certificate",
		slog.String("thumbprint", thumbprint.String()),
		slog.Int("failed_stores", len(errs)),
		slog.Duration("duration", time.Since(start)))

	if onlyMisses {
		return nil, fmt.Errorf("%w: no store holds thumbprint %s", interfaces.ErrCertificateNotFound, thumbprint)
	}
	return nil, fmt.Errorf("all stores failed to resolve thumbprint %s: %v", thumbprint, errs)
}

// Available checks if any store is available.
func (m *MultiStore) Available(ctx context.Context) bool {
	for _, store := range m.stores {
		if store.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this store.
func (m *MultiStore) Name() string {
	return "multi-store"
}

// LocationURI returns the combined URI of all aggregated stores.
func (m *MultiStore) LocationURI() string {
	var locations []string
	for _, store := range m.stores {
		locations = append(locations, store.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
