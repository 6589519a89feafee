package ddns

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// DefaultNameservers are the public resolvers asked by Inspector.
var DefaultNameservers = []string{"1.1.1.1:53", "8.8.8.8:53"}

// LookupA asks server (host:port) for the A records of name and returns the addresses in the answer section.
// A proxied record answers with the provider's edge addresses, not the origin.
func LookupA(ctx context.Context, server, name string, timeout time.Duration) ([]string, error) {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeA)
	m.RecursionDesired = true

	c := &dns.Client{Timeout: timeout}
	r, _, err := c.ExchangeContext(ctx, m, server)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if r.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("answered %s", dns.RcodeToString[r.Rcode])
	}
	var out []string
	for _, rr := range r.Answer {
		if a, ok := rr.(*dns.A); ok {
			out = append(out, a.A.String())
		}
	}
	return out, nil
}
