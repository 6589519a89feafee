package ddns_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/miekg/dns"

	ddns "github.com/Travis-Britz/cfddns"
)

// startNameserver runs an in-process UDP server answering A queries from zone.
func startNameserver(t *testing.T, zone map[string][]string) string {
	t.Helper()
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("unable to listen: %s", err)
	}
	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(req)
			q := req.Question[0]
			addrs, ok := zone[q.Name]
			if !ok {
				m.Rcode = dns.RcodeNameError
			}
			for _, a := range addrs {
				m.Answer = append(m.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(a),
				})
			}
			w.WriteMsg(m)
		}),
	}
	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("nameserver did not start")
	}
	return pc.LocalAddr().String()
}

func TestLookupA(t *testing.T) {
	ns := startNameserver(t, map[string][]string{"home.example.com.": {"198.51.100.7", "198.51.100.8"}})

	got, err := ddns.LookupA(context.Background(), ns, "home.example.com", time.Second)
	if err != nil {
		t.Fatalf("LookupA failed: %s", err)
	}
	if diff := cmp.Diff([]string{"198.51.100.7", "198.51.100.8"}, got); diff != "" {
		t.Fatalf("answer mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupANXDomain(t *testing.T) {
	ns := startNameserver(t, map[string][]string{})
	if _, err := ddns.LookupA(context.Background(), ns, "missing.example.com", time.Second); err == nil {
		t.Fatalf("Expected an error for NXDOMAIN")
	}
}
