// Package config resolves the settings of a run from the environment and an optional config file.
//
// Precedence is environment variable, then config file, then default.
// The file format is picked by extension: .ini, .yaml/.yml, and anything else is read as a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ddns "github.com/Travis-Britz/cfddns"
)

const (
	appDir   = "cfddns"
	fileName = "cfddns.env"

	// EnvConfigPath names the config file when --config is not given.
	EnvConfigPath = "DDNS_CONFIG"
)

// Key ties an environment variable to its section and name in ini and yaml files.
type Key struct {
	Env     string
	Section string
	Name    string
}

var (
	AuthMethod    = Key{"CLOUDFLARE_AUTH_METHOD", "cloudflare", "auth_method"}
	AuthKey       = Key{"CLOUDFLARE_AUTH_KEY", "cloudflare", "auth_key"}
	AuthEmail     = Key{"CLOUDFLARE_AUTH_EMAIL", "cloudflare", "auth_email"}
	ZoneID        = Key{"CLOUDFLARE_ZONE_ID", "cloudflare", "zone_id"}
	APIURL        = Key{"CLOUDFLARE_API_URL", "cloudflare", "api_url"}
	RecordName    = Key{"DDNS_RECORD_NAME", "record", "name"}
	DefaultDomain = Key{"DDNS_DEFAULT_DOMAIN", "record", "default_domain"}
	TTL           = Key{"DDNS_TTL", "record", "ttl"}
	Proxied       = Key{"DDNS_PROXIED", "record", "proxied"}
	SiteName      = Key{"DDNS_SITE_NAME", "notify", "site_name"}
	SlackURL      = Key{"SLACK_WEBHOOK_URL", "notify", "slack_url"}
	SlackChannel  = Key{"SLACK_CHANNEL", "notify", "slack_channel"}
	DiscordURL    = Key{"DISCORD_WEBHOOK_URL", "notify", "discord_url"}
	HTTPTimeout   = Key{"DDNS_HTTP_TIMEOUT", "http", "timeout"}
)

// Keys lists every recognised setting.
var Keys = []Key{
	AuthMethod, AuthKey, AuthEmail, ZoneID, APIURL,
	RecordName, DefaultDomain, TTL, Proxied,
	SiteName, SlackURL, SlackChannel, DiscordURL,
	HTTPTimeout,
}

// pathOverride, when non-empty, replaces the default config file path. Intended for testing.
var pathOverride string

// SetPath overrides the default config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override.
func ResetPath() { pathOverride = "" }

// DefaultPath is where the config file lives when neither --config nor DDNS_CONFIG is set.
func DefaultPath() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load builds validated settings.
// path may be empty, in which case DDNS_CONFIG and then DefaultPath are used;
// only the default file is allowed to be missing, and it is skipped when no config directory can be determined.
func Load(path string) (ddns.Settings, error) {
	optional := false
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		// with no home directory there is no default file; the environment alone may be enough
		defaultPath, err := DefaultPath()
		if err != nil {
			return fromValues(map[string]string{})
		}
		path = defaultPath
		optional = true
	}

	file, err := readFile(path)
	if err != nil {
		if !(optional && errors.Is(err, fs.ErrNotExist)) {
			return ddns.Settings{}, fmt.Errorf("%w: %w", ddns.ErrConfig, err)
		}
		file = map[string]string{}
	}
	return fromValues(file)
}

func fromValues(file map[string]string) (ddns.Settings, error) {
	get := func(k Key, defaultValue string) string {
		if value := os.Getenv(k.Env); value != "" {
			return value
		}
		if value := file[k.Env]; value != "" {
			return value
		}
		return defaultValue
	}

	s := ddns.Settings{
		AuthMethod:    ddns.AuthMethod(strings.ToLower(get(AuthMethod, string(ddns.AuthToken)))),
		AuthKey:       get(AuthKey, ""),
		AuthEmail:     get(AuthEmail, ""),
		ZoneID:        get(ZoneID, ""),
		APIURL:        get(APIURL, ddns.DefaultAPIURL),
		RecordName:    get(RecordName, ""),
		DefaultDomain: get(DefaultDomain, ""),
		SiteName:      get(SiteName, ""),
		SlackURL:      get(SlackURL, ""),
		SlackChannel:  get(SlackChannel, ""),
		DiscordURL:    get(DiscordURL, ""),
	}

	var err error
	if s.TTL, err = strconv.Atoi(get(TTL, strconv.Itoa(ddns.DefaultTTL))); err != nil {
		return s, fmt.Errorf("%w: %s must be an integer: %w", ddns.ErrConfig, TTL.Env, err)
	}
	if s.Proxied, err = strconv.ParseBool(get(Proxied, "false")); err != nil {
		return s, fmt.Errorf("%w: %s must be true or false: %w", ddns.ErrConfig, Proxied.Env, err)
	}
	if s.HTTPTimeout, err = parseTimeout(get(HTTPTimeout, ddns.DefaultHTTPTimeout.String())); err != nil {
		return s, fmt.Errorf("%w: %s: %w", ddns.ErrConfig, HTTPTimeout.Env, err)
	}

	if s.AuthKey == "" {
		return s, fmt.Errorf("%w: %s is required", ddns.ErrConfig, AuthKey.Env)
	}
	if s.ZoneID == "" {
		return s, fmt.Errorf("%w: %s is required", ddns.ErrConfig, ZoneID.Env)
	}
	if s.AuthMethod == ddns.AuthGlobal && s.AuthEmail == "" {
		return s, fmt.Errorf("%w: %s is required when %s is %q", ddns.ErrConfig, AuthEmail.Env, AuthMethod.Env, ddns.AuthGlobal)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// parseTimeout accepts a Go duration ("15s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
