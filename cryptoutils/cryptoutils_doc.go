// Package cryptoutils provides certificate handling for the site cloning
// service.
//
// This package implements the parsing and generation primitives the
// certificate stores are built on: decoding PEM-encoded certificates and
// private keys, decoding PKCS#12 bundles, matching keys to certificates, and
// generating self-signed certificates for tests and local setups.
//
// # Key Functions
//
// ParseCertificatePEM - Parses the first CERTIFICATE block of a PEM document
//
// ParsePrivateKeyPEM - Parses a private key in PKCS#8, PKCS#1 or SEC 1 form
//
// ParseBundlePEM - Parses a combined certificate plus key bundle
//
// ParsePKCS12 - Decodes a password-protected PKCS#12 (.pfx/.p12) bundle
//
// KeyMatchesCertificate - Reports whether a private key belongs to a certificate
//
// GenerateCertificate / GenerateRSACertificate - Self-signed certificate
// generation with ECDSA P-256 or RSA 2048 keys
//
// # Supported Key Types
//
// ECDSA and RSA keys are supported throughout; they are the key types client
// assertion signing understands (ES256 and RS256). Ed25519 keys are rejected
// during parsing.
package cryptoutils
