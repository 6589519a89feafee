package ddns

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Extractor pulls the address out of a response body.
// It returns "" when the body does not contain one.
type Extractor func(body []byte) string

// Source is a single IP echo service.
type Source struct {
	URL     string
	Extract Extractor
}

// DefaultSources are queried in order until one returns an address.
var DefaultSources = []Source{
	{URL: "https://cloudflare.com/cdn-cgi/trace", Extract: TraceField("ip")},
	{URL: "https://api.ipify.org", Extract: FirstLine},
	{URL: "https://ipv4.icanhazip.com", Extract: FirstLine},
}

// FirstLine returns the first line of body with surrounding space removed.
func FirstLine(body []byte) string {
	line, _ := bufio.NewReader(bytes.NewReader(body)).ReadString('\n')
	return strings.TrimSpace(line)
}

// TraceField returns an Extractor for "key=value" line bodies such as /cdn-cgi/trace.
func TraceField(key string) Extractor {
	prefix := key + "="
	return func(body []byte) string {
		scanner := bufio.NewScanner(bytes.NewReader(body))
		for scanner.Scan() {
			if v, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), prefix); ok {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}
}

// PlainSources wraps URLs that answer with the address as the first line of the body.
func PlainSources(serviceURL ...string) []Source {
	sources := make([]Source, 0, len(serviceURL))
	for _, u := range serviceURL {
		sources = append(sources, Source{URL: u, Extract: FirstLine})
	}
	return sources
}

// WebResolver constructs a resolver which uses external web services to look up the public IPv4 address.
//
// The sources are tried one at a time in the order given.
// The first one whose extracted answer is non-empty wins.
// Transport errors and non-2xx responses count as an empty answer for that source,
// and only running out of sources is an error.
// With no arguments DefaultSources is used.
//
// The returned address is not validated here; that is left to the caller.
func WebResolver(sources ...Source) Resolver {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &webResolver{
		sources: sources,
		timeout: DefaultHTTPTimeout,
		logger:  discard,
	}
}

type webResolver struct {
	httpClient *http.Client
	sources    []Source
	timeout    time.Duration
	logger     logrus.FieldLogger
}

func (wr *webResolver) SetLogger(l logrus.FieldLogger) { wr.logger = l }
func (wr *webResolver) SetHTTPClient(hc *http.Client)  { wr.httpClient = hc }

// Resolve implements ddns.Resolver.
func (wr *webResolver) Resolve(ctx context.Context) (string, error) {
	for _, s := range wr.sources {
		ip, err := wr.lookup(ctx, s)
		if err != nil {
			wr.logger.WithField("source", s.URL).Debugf("IP lookup failed: %s", err)
			continue
		}
		if ip == "" {
			wr.logger.WithField("source", s.URL).Debug("IP lookup returned nothing")
			continue
		}
		wr.logger.WithField("source", s.URL).Debugf("public IP is %s", ip)
		return ip, nil
	}
	return "", fmt.Errorf("%w (tried %d)", ErrDiscoveryExhausted, len(wr.sources))
}

func (wr *webResolver) lookup(ctx context.Context, s Source) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, wr.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	if wr.httpClient == nil {
		wr.httpClient = newIPv4Client(wr.timeout)
	}

	resp, err := wr.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("http request returned %s", resp.Status)
	}

	extract := s.Extract
	if extract == nil {
		extract = FirstLine
	}
	return extract(body), nil
}
