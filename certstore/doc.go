// Package certstore provides certificate trust stores with pluggable backends.
//
// The certstore package offers a unified interface for resolving client
// certificates and their private keys by SHA-1 thumbprint across multiple
// store backends:
//
//   - File system stores for local development and testing
//   - Vault KV stores for centrally managed credentials
//   - S3-compatible stores for cloud deployments
//
// # Store URI Format
//
// Certificate stores are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - file:///etc/sitecloner/certs?password=changeit
//   - vault://vault.example.com:8200/secret/sitecloner
//   - s3://certs-bucket/team-a?region=eu-west-1
//
// # Thumbprint Addressing
//
// Certificates are resolved by thumbprint, the SHA-1 hash of the DER
// certificate in normalized uppercase hex form. Resolution is a lookup, not a
// validation: stores perform no expiry, chain or revocation checks. A store
// that holds no matching certificate returns ErrCertificateNotFound.
//
// # File Stores
//
// The file store scans a directory for PEM files (.pem, .crt with a sibling
// .key when the certificate and key are split) and PKCS#12 bundles (.pfx,
// .p12, unlocked with the password query parameter). The first file whose
// certificate matches the requested thumbprint wins.
//
// URI format: file:///etc/sitecloner/certs?password=changeit
//
// # Vault Stores
//
// The Vault store reads one KV v2 entry per thumbprint with PEM-encoded
// "certificate" and "private_key" fields:
//
//	{mount}/data/{path}/{thumbprint}
//
// The client token is taken from the VAULT_TOKEN environment variable unless
// a token query parameter overrides it.
//
// URI format: vault://vault.example.com:8200/secret/sitecloner
//
// # S3 Stores
//
// The S3 store reads one PEM bundle object per thumbprint:
//
//	{prefix}/{thumbprint}.pem
//
// Credentials may be embedded in the URI ([access:secret@]) for static
// access; otherwise the default AWS credential chain applies.
//
// URI format: s3://certs-bucket/team-a?region=eu-west-1
//
// # Multi-Store Example
//
//	factory := certstore.NewCertStoreFactory(logger)
//	locations := []interfaces.StoreLocation{fileLoc, vaultLoc}
//	store, err := factory.CreateMultiStore(locations)
//
// The multi-store queries its stores in order, skips unavailable ones, and
// returns the first match.
package certstore
