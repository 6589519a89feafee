package ddns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Record is an A record as the provider reports it.
type Record struct {
	ID      string
	Name    string
	Content string
	TTL     int
	Proxied bool
}

// Cloudflare implements ddns.Provider against the Cloudflare v4 REST API.
//
// It should be constructed using NewCloudflare.
type Cloudflare struct {
	httpClient *http.Client
	baseURL    string
	zoneID     string
	headers    http.Header
	ttl        int
	proxied    bool
	logger     logrus.FieldLogger
}

var _ Provider = (*Cloudflare)(nil)

// NewCloudflare builds a provider for the zone, credentials, TTL and proxied flag in s.
// An unknown auth method or missing credential is reported here, before any request is made.
func NewCloudflare(s Settings) (*Cloudflare, error) {
	headers, err := AuthHeaders(s)
	if err != nil {
		return nil, err
	}
	if s.ZoneID == "" {
		return nil, fmt.Errorf("%w: zone identifier is required", ErrConfig)
	}
	timeout := s.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cloudflare{
		httpClient: NewHTTPClient(timeout),
		baseURL:    strings.TrimSuffix(s.apiURL(), "/"),
		zoneID:     s.ZoneID,
		headers:    headers,
		ttl:        ttl,
		proxied:    s.Proxied,
		logger:     discard,
	}, nil
}

func (cf *Cloudflare) SetLogger(l logrus.FieldLogger) { cf.logger = l }
func (cf *Cloudflare) SetHTTPClient(hc *http.Client)  { cf.httpClient = hc }

type cfEnvelope[T any] struct {
	Success bool      `json:"success"`
	Errors  []cfError `json:"errors"`
	Result  T         `json:"result"`
}

type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type cfDNSRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

func (r cfDNSRecord) record() Record {
	return Record{ID: r.ID, Name: r.Name, Content: r.Content, TTL: r.TTL, Proxied: r.Proxied}
}

type cfUpdateRecordBody struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

// FetchRecord looks up the A record called name in the zone.
// Only the first match is used when the provider returns several.
func (cf *Cloudflare) FetchRecord(ctx context.Context, name string) (Record, error) {
	const op = "fetch record"
	q := url.Values{}
	q.Set("type", "A")
	q.Set("name", name)
	path := fmt.Sprintf("/zones/%s/dns_records?%s", url.PathEscape(cf.zoneID), q.Encode())

	var out cfEnvelope[[]cfDNSRecord]
	if err := cf.doJSON(ctx, op, http.MethodGet, path, nil, &out); err != nil {
		return Record{}, err
	}
	if len(out.Result) == 0 {
		return Record{}, fmt.Errorf("%w: no A record named %s in zone %s", ErrRecordNotFound, name, cf.zoneID)
	}
	if len(out.Result) > 1 {
		cf.logger.WithField("record", name).Debugf("%d records match; using the first", len(out.Result))
	}
	return out.Result[0].record(), nil
}

// UpdateRecord overwrites record id with a new address, keeping the configured TTL and proxied flag.
func (cf *Cloudflare) UpdateRecord(ctx context.Context, id, name, content string) (Record, error) {
	const op = "update record"
	body := cfUpdateRecordBody{
		Type:    "A",
		Name:    name,
		Content: content,
		TTL:     cf.ttl,
		Proxied: cf.proxied,
	}
	path := fmt.Sprintf("/zones/%s/dns_records/%s", url.PathEscape(cf.zoneID), url.PathEscape(id))

	var out cfEnvelope[cfDNSRecord]
	if err := cf.doJSON(ctx, op, http.MethodPut, path, body, &out); err != nil {
		return Record{}, err
	}
	return out.Result.record(), nil
}

// doJSON sends the request and decodes the envelope into out.
// An undecodable body is ErrProtocol and an envelope with success=false is ErrProviderRejected;
// both are returned as *ResponseError carrying the raw body.
func (cf *Cloudflare) doJSON(ctx context.Context, op, method, path string, body any, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, cf.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	for k, v := range cf.headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	cf.logger.WithField("method", method).Debugf("%s %s", op, path)
	resp, err := cf.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", op, err)
	}

	var env struct {
		Success bool      `json:"success"`
		Errors  []cfError `json:"errors"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ResponseError{Op: op, Body: string(raw), Err: fmt.Errorf("%w: %s", ErrProtocol, err)}
	}
	if !env.Success {
		return &ResponseError{Op: op, Body: string(raw), Err: fmt.Errorf("%w: %s", ErrProviderRejected, cfErrorString(env.Errors))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ResponseError{Op: op, Body: string(raw), Err: fmt.Errorf("%w: %s", ErrProtocol, err)}
	}
	return nil
}

func cfErrorString(errs []cfError) string {
	if len(errs) == 0 {
		return "no error details"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}
