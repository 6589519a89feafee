package ddns_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	ddns "github.com/Travis-Britz/cfddns"
)

func TestVerifyToken(t *testing.T) {
	cf := newFakeCloudflare(t)
	v, err := ddns.VerifyCredentials(context.Background(), testSettings(cf.URL), nil)
	if err != nil {
		t.Fatalf("VerifyCredentials failed: %s", err)
	}
	expected := ddns.Verification{Method: ddns.AuthToken, TokenStatus: "active", ZoneName: "example.com", ZoneStatus: "active"}
	if diff := cmp.Diff(expected, v); diff != "" {
		t.Fatalf("verification mismatch (-want +got):\n%s", diff)
	}
}

func TestVerifyInactiveToken(t *testing.T) {
	cf := newFakeCloudflare(t)
	cf.configure(func(f *fakeCloudflare) { f.tokenStatus = "disabled" })
	_, err := ddns.VerifyCredentials(context.Background(), testSettings(cf.URL), nil)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("Expected an inactive token error; got %v", err)
	}
}

func TestVerifyGlobalKey(t *testing.T) {
	cf := newFakeCloudflare(t)
	s := testSettings(cf.URL)
	s.AuthMethod, s.AuthEmail, s.AuthKey = ddns.AuthGlobal, "me@example.com", "global-key"
	v, err := ddns.VerifyCredentials(context.Background(), s, nil)
	if err != nil {
		t.Fatalf("VerifyCredentials failed: %s", err)
	}
	if v.Email != "me@example.com" || v.ZoneName != "example.com" {
		t.Fatalf("Unexpected verification %+v", v)
	}
}

func TestVerifyWrongZone(t *testing.T) {
	cf := newFakeCloudflare(t)
	s := testSettings(cf.URL)
	s.ZoneID = "someone-elses-zone"
	if _, err := ddns.VerifyCredentials(context.Background(), s, nil); err == nil {
		t.Fatalf("Expected an error for an unreadable zone")
	}
}

func TestInspect(t *testing.T) {
	cf := newFakeCloudflare(t, ddns.Record{ID: "rec-1", Name: testRecord, Content: "198.51.100.7", TTL: 120, Proxied: true})
	ns := startNameserver(t, map[string][]string{testRecord + ".": {"104.16.0.1"}})

	in := ddns.Inspector{
		Settings:    testSettings(cf.URL),
		Resolver:    ddns.FromString("198.51.100.7"),
		Nameservers: []string{ns},
	}
	st, err := in.Inspect(context.Background(), testRecord)
	if err != nil {
		t.Fatalf("Inspect failed: %s", err)
	}
	if st.PublicIP != "198.51.100.7" || !st.InSync() {
		t.Fatalf("Expected the record to be in sync; got %+v", st)
	}
	if len(st.Provider) != 1 || st.Provider[0].ID != "rec-1" || !st.Provider[0].Proxied || st.Provider[0].TTL != 120 {
		t.Fatalf("Unexpected provider records %+v", st.Provider)
	}
	if diff := cmp.Diff(map[string][]string{ns: {"104.16.0.1"}}, st.Resolved); diff != "" {
		t.Fatalf("resolved mismatch (-want +got):\n%s", diff)
	}
	if cf.updateCount() != 0 {
		t.Fatalf("Expected Inspect to never update")
	}
}

func TestInspectPartialFailure(t *testing.T) {
	cf := newFakeCloudflare(t)
	ns := startNameserver(t, map[string][]string{testRecord + ".": {"198.51.100.1"}})

	in := ddns.Inspector{
		Settings:    testSettings(cf.URL),
		Resolver:    ddns.FromString("198.51.100.7"),
		Nameservers: []string{ns},
	}
	st, err := in.Inspect(context.Background(), testRecord)
	if err == nil {
		t.Fatalf("Expected an error for the missing record")
	}
	if st.PublicIP != "198.51.100.7" || len(st.Resolved[ns]) != 1 || st.InSync() {
		t.Fatalf("Expected the other parts to be filled in; got %+v", st)
	}
}
