/*
Package api holds the types shared between the site cloning service and its
clients.

This package defines the wire contract of the clone endpoint:

1. CloneRequest - the request body naming the source and target sites
2. CloneProvider - the client-side abstraction over the endpoint
3. HTTPServerConfig - configuration for the HTTP server hosting the API

The endpoint itself is implemented in the cloner subpackage, the server
shell in the httpserver package.

# Request Flow

A clone request names two sites. The service resolves its client
certificate, opens an authenticated session to the source site, extracts
its provisioning template, closes the source session, opens a session to
the target site and applies the template there. The response is an empty
200 on success; failures carry a stage-tagged message with a 500 status.

# Authentication

Requests are authenticated with a shared function key, passed either in
the x-functions-key header or the code query parameter. A server deployed
without keys accepts unauthenticated requests.

See the cloner subpackage for the handler and client implementations.
*/
package api
