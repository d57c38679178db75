// Package main (cmd/sitecloner) implements the site cloning service.
//
// The service exposes one business endpoint, POST /api/clone, which copies
// the provisioning template of a source site onto a target site. Each
// request authenticates to both sites with the same app-only identity: a
// client ID, a tenant, and a certificate resolved from a trust store by its
// thumbprint.
//
// Certificate stores are configured as location URIs and may be repeated;
// lookups walk them in order and the first match wins:
//
//   - file:///etc/sitecloner/certs?password=changeit
//   - vault://vault.example.com:8200/secret/sitecloner
//   - s3://certs-bucket/team-a?region=eu-west-1
//
// The identity parameters can be passed as flags or through the THUMBPRINT,
// CLIENT_ID and TENANT environment variables. They are not validated at
// startup; a wrong thumbprint shows up as a CERTIFICATE ERROR on the first
// clone, a wrong client ID or tenant as an authentication failure.
//
// API requests are authenticated with shared function keys when any are
// configured. Health endpoints (/livez, /readyz), drain control and the
// Prometheus metrics listener stay outside the keyed surface.
//
// The server implements graceful shutdown on receiving termination signals
// (SIGINT/SIGTERM) and leaves the HTTP write timeout unbounded: clone
// responses are held open for as long as extraction and application run.
//
// Example usage:
//
//	sitecloner --listen-addr=0.0.0.0:8080 \
//	    --thumbprint=A9993E364706816ABA3E25717850C26C9CD0D89D \
//	    --client-id=c4dd6f2a-8a2a-4a35-b3a7-6f8f4c2a9e01 \
//	    --tenant=contoso.onmicrosoft.com \
//	    --cert-store='file:///etc/sitecloner/certs' \
//	    --function-key=shared-access-key
package main
