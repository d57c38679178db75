package provisioning

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
)

// resolveHost queries the configured resolver for the host's A and AAAA
// records. It only establishes that the host resolves at all, so connection
// failures later in the pipeline can be told apart from naming problems.
func resolveHost(ctx context.Context, host, resolverAddr string) error {
	fqdn := dns.Fqdn(host)
	client := new(dns.Client)

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		m := new(dns.Msg)
		m.Id = dns.Id()
		m.RecursionDesired = true
		m.Question = []dns.Question{{Name: fqdn, Qtype: qtype, Qclass: dns.ClassINET}}

		in, _, err := client.ExchangeContext(ctx, m, resolverAddr)
		if err != nil {
			return fmt.Errorf("DNS query for %s failed: %w", host, err)
		}
		if len(in.Answer) > 0 {
			return nil
		}
	}

	return fmt.Errorf("host %s has no A or AAAA records", host)
}
