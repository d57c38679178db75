// Package main (cmd/clonecli) implements a client for the site cloning
// service.
//
// The client provides a command-line tool for triggering clones through a
// running service instance:
//
//	clone - Copy the provisioning template of the source site onto the
//	        target site. The command blocks until the remote pipeline has
//	        finished; extraction and application of large sites can take a
//	        long time, and the underlying HTTP client deliberately carries
//	        no timeout.
//
// The service's function key, when one is deployed, is passed with the
// --function-key flag or the FUNCTION_KEY environment variable.
//
// Example usage:
//
//	clonecli --server-addr=https://cloner.example.com:8080 \
//	    --function-key=shared-access-key \
//	    clone \
//	    --source-url=https://contoso.example.com/sites/template \
//	    --target-url=https://contoso.example.com/sites/newproject
package main
