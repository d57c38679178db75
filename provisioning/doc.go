// Package provisioning implements the session, extraction and application
// capabilities over a remote content management API.
//
// The Engine is the single implementation of the three capability interfaces
// the request handler depends on:
//
//   - interfaces.SessionFactory: opens app-only authenticated sessions
//   - interfaces.TemplateExtractor: captures provisioning templates
//   - interfaces.TemplateApplier: provisions templates onto target sites
//
// # Session Establishment
//
// Opening a session runs through three steps. An optional DNS preflight
// resolves the site host against a configured resolver so connection problems
// fail fast with an attributable error. An app-only access token is then
// acquired from the identity provider using the OAuth2 client credentials
// grant with a signed JWT client assertion: the certificate resolved from the
// trust store signs the assertion and its thumbprint travels in the x5t
// header. Finally a metadata round trip (GET {site}/api/web) validates that
// the session actually works before it is handed out.
//
// Session HTTP clients deliberately carry no timeout. Template operations on
// large sites can run for a very long time and the deployment environment
// owns the outer time limit; cancellation flows through request contexts.
// Tokens are refreshed transparently per request, so long operations survive
// token expiry.
//
// # Event Streams
//
// The extract and apply endpoints respond with newline-delimited JSON event
// streams. Progress events are forwarded to the caller's ProgressReporter as
// they arrive; a terminal event carries the extracted template, the
// application outcome, or a remote error:
//
//	{"type":"progress","message":"Provisioning Fields","step":3,"total":12}
//	{"type":"template","template":"<base64>"}
//	{"type":"done"}
//	{"type":"error","error":"..."}
//
// # Fixed Application Policy
//
// Template application always clears pre-existing navigation on the target
// before the template lands. Clone targets start from the source's
// navigation, never a merge. There is no rollback: a mid-apply failure leaves
// the target partially provisioned and surfaces as an error.
package provisioning
