/*
Package cloner implements the site cloning endpoint: it copies the
provisioning template of one site onto another.

The package contains both the server-side handler and a client library for
calling the endpoint.

# Key Components

  - Handler: Processes clone requests end to end, resolving the client
    certificate, driving template extraction and application through
    injected capabilities, and mapping failures to stage-tagged errors
  - LogReporter: Forwards remote provisioning progress to the structured log
  - CloneClient: Client implementation for triggering clones remotely

# Clone Pipeline

A clone request runs through three stages, each with its own error tag:

 1. The client certificate matching the configured thumbprint is resolved
    from the trust store (CERTIFICATE ERROR)
 2. A session is opened to the source site and its provisioning template
    is extracted; the session is released before going on (EXTRACT ERROR)
 3. A session is opened to the target site and the template is applied
    with navigation clearing enabled (APPLY ERROR)

Sessions never overlap: the source session is closed before the target
session is opened, and both are released on every exit path. The template
travels through the pipeline as an opaque blob.

# Usage Example

	// Create a clone client
	client := &cloner.CloneClient{
		ServerAddr:  "https://cloner.example.com:8080",
		FunctionKey: "shared-access-key",
	}

	// Clone one site onto another
	err := client.Clone(
		"https://contoso.example.com/sites/template",
		"https://contoso.example.com/sites/newproject",
	)
	if err != nil {
		log.Fatalf("Clone failed: %v", err)
	}
*/
package cloner
