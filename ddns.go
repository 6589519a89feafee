package ddns

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

var discard logrus.FieldLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// New validates s and prepares a client for one record.
//
// The record is the name given with ForDomain, else s.RecordName, else s.DefaultDomain.
// By default the client talks to Cloudflare with the credentials in s,
// discovers the address with WebResolver(DefaultSources),
// and notifies every webhook configured in s.
// Any of these can be replaced with the Using* options.
//
// Configuration problems (unknown auth method, missing credentials, invalid record name)
// are reported here, before any network activity.
func New(s Settings, options ...ClientOption) (DDNSClient, error) {
	if s.TTL == 0 {
		s.TTL = DefaultTTL
	}
	if s.HTTPTimeout == 0 {
		s.HTTPTimeout = DefaultHTTPTimeout
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("ddns.New: %w", err)
	}
	c := &client{
		settings: s,
		logger:   discard,
	}
	for i, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("ddns.New: option %d returned an error: %w", i, err)
		}
	}

	domain, err := s.Target(c.domain)
	if err != nil {
		return nil, fmt.Errorf("ddns.New: %w", err)
	}
	c.domain = domain

	if c.Provider == nil {
		if c.Provider, err = NewCloudflare(s); err != nil {
			return nil, fmt.Errorf("ddns.New: error creating cloudflare DNS provider: %w", err)
		}
	}
	if c.Resolver == nil {
		c.Resolver = WebResolver()
		if wr, ok := c.Resolver.(*webResolver); ok {
			wr.timeout = s.HTTPTimeout
		}
	}
	if !c.customNotifiers {
		c.notifiers = notifiersFor(s)
	}

	// dependencies are all registered now, so the shared logger and http client can be handed out
	c.propagate()
	return c, nil
}

type ClientOption func(*client) error

// ForDomain overrides the record name from the settings.
func ForDomain(name string) ClientOption {
	return func(c *client) error {
		c.domain = name
		return nil
	}
}

func UsingProvider(p Provider) ClientOption {
	return func(c *client) error {
		c.Provider = p
		return nil
	}
}

func UsingResolver(resolver Resolver) ClientOption {
	return func(c *client) error {
		c.Resolver = resolver
		return nil
	}
}

// UsingNotifiers replaces the notifiers derived from the settings.
// Calling it with no arguments disables notifications.
func UsingNotifiers(n ...Notifier) ClientOption {
	return func(c *client) error {
		c.notifiers = n
		c.customNotifiers = true
		return nil
	}
}

func WithLogger(logger logrus.FieldLogger) ClientOption {
	return func(c *client) error {
		if logger == nil {
			logger = discard
		}
		c.logger = logger
		return nil
	}
}

// UsingHTTPClient makes every dependency that speaks http use httpclient.
func UsingHTTPClient(httpclient *http.Client) ClientOption {
	return func(c *client) error {
		c.httpClient = httpclient
		return nil
	}
}

// DryRun makes the client stop short of updating the record.
func DryRun(enabled bool) ClientOption {
	return func(c *client) error {
		c.dryRun = enabled
		return nil
	}
}

type DDNSClient interface {
	RunDDNS(ctx context.Context) (Result, error)
}

// Result describes what a run observed and did.
type Result struct {
	Record   string
	RecordID string
	OldIP    string
	NewIP    string
	Changed  bool
	DryRun   bool
}

type client struct {
	Resolver
	Provider
	notifiers       []Notifier
	customNotifiers bool
	logger          logrus.FieldLogger
	httpClient      *http.Client
	settings        Settings
	domain          string
	dryRun          bool
}

func (c *client) propagate() {
	type setLogger interface {
		SetLogger(logrus.FieldLogger)
	}
	type setHTTPClient interface {
		SetHTTPClient(*http.Client)
	}
	deps := []any{c.Resolver, c.Provider}
	for _, n := range c.notifiers {
		deps = append(deps, n)
	}
	for _, d := range deps {
		if l, ok := d.(setLogger); ok {
			l.SetLogger(c.logger)
		}
		if h, ok := d.(setHTTPClient); ok && c.httpClient != nil {
			h.SetHTTPClient(c.httpClient)
		}
	}
}

// RunDDNS performs one reconciliation.
//
// When the discovered address equals the record's content nothing is written and nobody is notified.
// Otherwise the record is updated and every notifier is told the outcome, success or not.
func (c *client) RunDDNS(ctx context.Context) (Result, error) {
	res := Result{Record: c.domain, DryRun: c.dryRun}
	log := c.logger.WithField("record", c.domain)

	ip, err := c.Resolve(ctx)
	if err != nil {
		return res, fmt.Errorf("error getting public IP: %w", err)
	}
	if !ValidIPv4(ip) {
		return res, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}
	res.NewIP = ip
	log.Debugf("got public IP: %s", ip)

	record, err := c.FetchRecord(ctx, c.domain)
	if err != nil {
		return res, fmt.Errorf("error fetching %s: %w", c.domain, err)
	}
	res.RecordID, res.OldIP = record.ID, record.Content
	log = log.WithFields(logrus.Fields{"ip": ip, "old_ip": record.Content})

	if ip == record.Content {
		log.Infof("IP (%s) for %s has not changed", ip, c.domain)
		return res, nil
	}
	if c.dryRun {
		log.Infof("dry run: would update %s from %s to %s", c.domain, record.Content, ip)
		return res, nil
	}

	if _, err := c.UpdateRecord(ctx, record.ID, c.domain, ip); err != nil {
		c.notify(ctx, FailedMessage(c.settings.SiteName, c.domain, record.ID, ip))
		return res, fmt.Errorf("error updating %s to %s: %w", c.domain, ip, err)
	}
	res.Changed = true
	log.Infof("%s updated to %s", c.domain, ip)
	c.notify(ctx, UpdatedMessage(c.settings.SiteName, c.domain, ip))
	return res, nil
}

func (c *client) notify(ctx context.Context, message string) {
	for _, n := range c.notifiers {
		n.Notify(ctx, message)
	}
}
