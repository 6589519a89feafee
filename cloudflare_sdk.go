package ddns

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudflare/cloudflare-go"
)

// newCloudflareAPI builds an SDK client for the read-only commands.
// The record itself is only ever written through the Cloudflare provider type.
func newCloudflareAPI(s Settings, hc *http.Client) (*cloudflare.API, error) {
	if _, err := AuthHeaders(s); err != nil {
		return nil, err
	}
	if hc == nil {
		hc = NewHTTPClient(s.HTTPTimeout)
	}
	opts := []cloudflare.Option{
		cloudflare.HTTPClient(hc),
		cloudflare.BaseURL(s.apiURL()),
	}
	var (
		api *cloudflare.API
		err error
	)
	switch s.AuthMethod {
	case AuthGlobal:
		api, err = cloudflare.New(s.AuthKey, s.AuthEmail, opts...)
	default:
		api, err = cloudflare.NewWithAPIToken(s.AuthKey, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating cloudflare api client: %w", err)
	}
	return api, nil
}

// Verification is what VerifyCredentials learned about the account and zone.
type Verification struct {
	Method      AuthMethod
	TokenStatus string // token method only
	Email       string // global method only
	ZoneName    string
	ZoneStatus  string
}

// VerifyCredentials checks that the credentials in s are accepted and can read the configured zone.
// A token must report status "active".
func VerifyCredentials(ctx context.Context, s Settings, hc *http.Client) (Verification, error) {
	v := Verification{Method: s.AuthMethod}
	api, err := newCloudflareAPI(s, hc)
	if err != nil {
		return v, err
	}

	switch s.AuthMethod {
	case AuthToken:
		result, err := api.VerifyAPIToken(ctx)
		if err != nil {
			return v, fmt.Errorf("unable to verify api token: %w", err)
		}
		v.TokenStatus = result.Status
		if result.Status != "active" {
			return v, fmt.Errorf("expected api token status to be \"active\"; got \"%s\"", result.Status)
		}
	case AuthGlobal:
		user, err := api.UserDetails(ctx)
		if err != nil {
			return v, fmt.Errorf("unable to read account details: %w", err)
		}
		v.Email = user.Email
	}

	zone, err := api.ZoneDetails(ctx, s.ZoneID)
	if err != nil {
		return v, fmt.Errorf("unable to read zone %s: %w", s.ZoneID, err)
	}
	v.ZoneName, v.ZoneStatus = zone.Name, zone.Status
	return v, nil
}

// ProviderRecord is an A record as listed by the SDK, with the fields worth showing a person.
type ProviderRecord struct {
	ID         string
	Content    string
	TTL        int
	Proxied    bool
	ModifiedOn string
}

// Status is a read-only snapshot of a record: what the host looks like from outside,
// what the provider holds, and what public resolvers currently answer.
type Status struct {
	Record   string
	PublicIP string
	Provider []ProviderRecord
	Resolved map[string][]string // nameserver -> A answers
}

// InSync reports whether the provider's first record already holds the public IP.
func (st Status) InSync() bool {
	return st.PublicIP != "" && len(st.Provider) > 0 && st.Provider[0].Content == st.PublicIP
}

// Inspector gathers a Status without changing anything.
type Inspector struct {
	Settings    Settings
	Resolver    Resolver
	HTTPClient  *http.Client
	Nameservers []string
}

// Inspect collects as much of the Status as it can.
// Each part that failed is reported in the joined error; the rest of the Status is still filled in.
func (in Inspector) Inspect(ctx context.Context, name string) (Status, error) {
	st := Status{Record: name, Resolved: map[string][]string{}}
	var errs []error

	resolver := in.Resolver
	if resolver == nil {
		resolver = WebResolver()
	}
	if ip, err := resolver.Resolve(ctx); err != nil {
		errs = append(errs, fmt.Errorf("public IP: %w", err))
	} else if !ValidIPv4(ip) {
		errs = append(errs, fmt.Errorf("public IP: %w: %q", ErrInvalidIP, ip))
	} else {
		st.PublicIP = ip
	}

	if recs, err := in.providerRecords(ctx, name); err != nil {
		errs = append(errs, fmt.Errorf("provider: %w", err))
	} else {
		st.Provider = recs
	}

	nameservers := in.Nameservers
	if len(nameservers) == 0 {
		nameservers = DefaultNameservers
	}
	for _, ns := range nameservers {
		answers, err := LookupA(ctx, ns, name, in.Settings.HTTPTimeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("nameserver %s: %w", ns, err))
			continue
		}
		st.Resolved[ns] = answers
	}
	return st, errors.Join(errs...)
}

func (in Inspector) providerRecords(ctx context.Context, name string) ([]ProviderRecord, error) {
	api, err := newCloudflareAPI(in.Settings, in.HTTPClient)
	if err != nil {
		return nil, err
	}
	records, _, err := api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(in.Settings.ZoneID), cloudflare.ListDNSRecordsParams{
		Type: "A",
		Name: name,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no A record named %s", ErrRecordNotFound, name)
	}
	out := make([]ProviderRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ProviderRecord{
			ID:         r.ID,
			Content:    r.Content,
			TTL:        r.TTL,
			Proxied:    r.Proxied != nil && *r.Proxied,
			ModifiedOn: r.ModifiedOn.Format("2006-01-02 15:04:05 MST"),
		})
	}
	return out, nil
}
