package interfaces

import (
	"crypto"
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SiteURL is the base URL of a remote site, e.g. https://contoso.example.com/sites/marketing.
type SiteURL string

// String returns the URL as a string.
func (s SiteURL) String() string {
	return string(s)
}

// Parse returns the parsed form of the URL.
func (s SiteURL) Parse() (*url.URL, error) {
	parsed, err := url.Parse(string(s))
	if err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", string(s), err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q: missing scheme or host", string(s))
	}
	return parsed, nil
}

// Thumbprint is a SHA-1 certificate fingerprint in normalized form:
// uppercase hex with separators stripped.
type Thumbprint string

// NewThumbprint normalizes a fingerprint string by stripping colon and space
// separators and uppercasing. No hex or length validation happens here: a
// malformed thumbprint simply never matches a stored certificate.
func NewThumbprint(raw string) Thumbprint {
	clean := strings.NewReplacer(":", "", " ", "").Replace(raw)
	return Thumbprint(strings.ToUpper(clean))
}

// ComputeThumbprint calculates the SHA-1 fingerprint of a DER-encoded
// certificate.
func ComputeThumbprint(der []byte) Thumbprint {
	sum := sha1.Sum(der)
	return Thumbprint(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// String returns the normalized fingerprint string.
func (t Thumbprint) String() string {
	return string(t)
}

// Equal compares two thumbprints.
func (t Thumbprint) Equal(other Thumbprint) bool {
	return t == other
}

// ClientCertificate is a certificate resolved from a trust store together
// with its private key, ready to sign client assertions.
type ClientCertificate struct {
	Leaf       *x509.Certificate
	PrivateKey crypto.Signer
}

// Thumbprint returns the SHA-1 fingerprint of the certificate.
func (c *ClientCertificate) Thumbprint() Thumbprint {
	return ComputeThumbprint(c.Leaf.Raw)
}

// Subject returns the certificate subject for logging.
func (c *ClientCertificate) Subject() string {
	return c.Leaf.Subject.String()
}

// Validate checks the certificate carries both a leaf and a usable key. It
// deliberately performs no expiry, chain or revocation checks: resolving a
// certificate is a lookup, not a validation.
func (c *ClientCertificate) Validate() error {
	if c == nil {
		return errors.New("no certificate")
	}
	if c.Leaf == nil {
		return errors.New("certificate has no leaf")
	}
	if c.PrivateKey == nil {
		return errors.New("certificate has no private key")
	}
	return nil
}

// AppIdentity is the application identity the service authenticates with:
// an app-only principal plus the thumbprint selecting its certificate. The
// same identity is used for both the source and the target site. It is read
// from configuration once at startup and passed explicitly to the handler.
type AppIdentity struct {
	ClientID   string
	TenantID   string
	Thumbprint Thumbprint
}

// ProvisioningTemplate is the opaque artifact extracted from a source site
// and applied to a target site. The service never interprets its contents.
type ProvisioningTemplate []byte

// Empty reports whether extraction produced no usable artifact.
func (t ProvisioningTemplate) Empty() bool {
	return len(t) == 0
}

// SiteInfo carries the metadata returned by the session validation round
// trip.
type SiteInfo struct {
	URL   SiteURL `json:"url"`
	Title string  `json:"title"`
}
