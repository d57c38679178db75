// Package interfaces defines the core interfaces and types for the site
// cloning service, separating interface definitions from implementations.
//
// The package provides the contracts between the request handler and its
// collaborators without including implementation details:
//
// # Certificate Resolution
//
// CertificateStore: Resolves client certificates and their private keys from a
// trust store by thumbprint. Implementations cover local directories, Vault KV
// and S3 buckets; a multi-store aggregates several of them.
//
// CertStoreFactory: Creates certificate stores from URI strings (file://,
// vault://, s3://) and builds multi-store configurations.
//
// # Provisioning Capabilities
//
// SessionFactory: Opens authenticated sessions to remote sites using app-only
// certificate credentials, validating each session with a metadata round trip
// before handing it out.
//
// TemplateExtractor: Captures a site's provisioning template through an open
// session, reporting progress along the way.
//
// TemplateApplier: Provisions a previously extracted template onto another
// site's session, likewise reporting progress.
//
// ProgressReporter: Observer for step-by-step progress callbacks emitted
// during extraction and application.
//
// # Type Definitions
//
//   - SiteURL: Base URL of a remote site
//   - Thumbprint: Normalized SHA-1 certificate fingerprint used as the trust
//     store lookup key
//   - ClientCertificate: Resolved certificate plus private key
//   - AppIdentity: Client ID, tenant ID and thumbprint the service
//     authenticates with
//   - ProvisioningTemplate: Opaque extracted site template
//   - SiteInfo: URL and title returned by the session validation round trip
//
// # Error Types
//
// Sentinel errors returned by stores and sessions:
//
//   - ErrCertificateNotFound: No certificate matches the thumbprint
//   - ErrStoreUnavailable: Certificate store is not accessible
//   - ErrInvalidLocationURI: Store location URI is malformed
//   - ErrEmptyTemplate: Extraction produced no artifact
//   - ErrSessionClosed: Operation attempted on a released session
//
// StageError tags an underlying failure with the pipeline stage it occurred
// in; the handler maps the tag onto the HTTP error response.
package interfaces
