package ddns

import (
	"fmt"
	"net/http"
	"time"
)

// AuthMethod selects how requests to the Cloudflare API are authenticated.
type AuthMethod string

const (
	// AuthToken uses a scoped API token sent as a bearer token.
	AuthToken AuthMethod = "token"
	// AuthGlobal uses the account's global API key together with the account email.
	AuthGlobal AuthMethod = "global"
)

const (
	DefaultTTL         = 3600
	DefaultHTTPTimeout = 10 * time.Second
	DefaultAPIURL      = "https://api.cloudflare.com/client/v4"
)

// Settings is the complete configuration of a run.
// It is built once at startup and passed by value to every component.
type Settings struct {
	AuthMethod AuthMethod
	AuthKey    string
	AuthEmail  string // only used with AuthGlobal
	ZoneID     string

	RecordName    string
	DefaultDomain string
	TTL           int
	Proxied       bool

	SiteName     string
	SlackURL     string
	SlackChannel string
	DiscordURL   string

	APIURL      string
	HTTPTimeout time.Duration
}

// Validate checks the settings that do not depend on the record name.
func (s Settings) Validate() error {
	if _, err := AuthHeaders(s); err != nil {
		return err
	}
	if s.ZoneID == "" {
		return fmt.Errorf("%w: zone identifier is required", ErrConfig)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("%w: ttl must be a positive number of seconds; got %d", ErrConfig, s.TTL)
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http timeout must be positive; got %s", ErrConfig, s.HTTPTimeout)
	}
	return nil
}

// Target picks the record to manage: arg if given, else RecordName, else DefaultDomain.
// The result must pass ValidDomain.
func (s Settings) Target(arg string) (string, error) {
	name := arg
	if name == "" {
		name = s.RecordName
	}
	if name == "" {
		name = s.DefaultDomain
	}
	if name == "" {
		return "", fmt.Errorf("%w: no record name given and no default domain configured", ErrConfig)
	}
	if !ValidDomain(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidDomain, name)
	}
	return name, nil
}

func (s Settings) apiURL() string {
	if s.APIURL == "" {
		return DefaultAPIURL
	}
	return s.APIURL
}

// AuthHeaders returns the headers that authenticate a request for the configured method.
func AuthHeaders(s Settings) (http.Header, error) {
	if s.AuthKey == "" {
		return nil, fmt.Errorf("%w: auth key is required", ErrConfig)
	}
	h := http.Header{}
	switch s.AuthMethod {
	case AuthGlobal:
		if s.AuthEmail == "" {
			return nil, fmt.Errorf("%w: auth email is required for the %q auth method", ErrConfig, AuthGlobal)
		}
		h.Set("X-Auth-Email", s.AuthEmail)
		h.Set("X-Auth-Key", s.AuthKey)
	case AuthToken:
		h.Set("Authorization", "Bearer "+s.AuthKey)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrConfig, ErrUnknownAuthMethod, s.AuthMethod)
	}
	return h, nil
}
