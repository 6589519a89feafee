package ddns_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	ddns "github.com/Travis-Britz/cfddns"
)

const (
	testZone   = "zone-1"
	testRecord = "home.example.com"
	testToken  = "secret-token"
)

// fakeCloudflare serves the two dns_records endpoints the provider uses.
type fakeCloudflare struct {
	*httptest.Server

	mu        sync.Mutex
	records   map[string]ddns.Record // by name
	fetches   int
	updates   []updateBody
	headers   []http.Header
	fetchRaw  string // replaces the fetch response when set
	rejectUp  bool
	updateRaw string

	tokenStatus string
}

type updateBody struct {
	ID      string
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

func newFakeCloudflare(t *testing.T, records ...ddns.Record) *fakeCloudflare {
	t.Helper()
	f := &fakeCloudflare{records: map[string]ddns.Record{}, tokenStatus: "active"}
	for _, r := range records {
		f.records[r.Name] = r
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /zones/{zone}/dns_records", f.list)
	mux.HandleFunc("GET /zones/{zone}", f.zone)
	mux.HandleFunc("GET /user/tokens/verify", f.verify)
	mux.HandleFunc("GET /user", f.user)
	mux.HandleFunc("PUT /zones/{zone}/dns_records/{id}", f.update)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeCloudflare) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	f.headers = append(f.headers, r.Header.Clone())
	if f.fetchRaw != "" {
		io.WriteString(w, f.fetchRaw)
		return
	}
	if r.PathValue("zone") != testZone || r.URL.Query().Get("type") != "A" {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"errors":[{"code":7003,"message":"Could not route"}],"result":null}`)
		return
	}
	result := []map[string]any{}
	if rec, ok := f.records[r.URL.Query().Get("name")]; ok {
		result = append(result, recordJSON(rec))
	}
	json.NewEncoder(w).Encode(map[string]any{
		"success": true, "errors": []any{}, "result": result,
		"result_info": map[string]int{"page": 1, "per_page": 100, "count": len(result), "total_count": len(result), "total_pages": 1},
	})
}

func (f *fakeCloudflare) zone(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("zone") != testZone {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"errors":[{"code":1001,"message":"Invalid zone identifier"}],"result":null}`)
		return
	}
	io.WriteString(w, `{"success":true,"errors":[],"messages":[],"result":{"id":"`+testZone+`","name":"example.com","status":"active"}}`)
}

func (f *fakeCloudflare) verify(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	status := f.tokenStatus
	f.mu.Unlock()
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"success":false,"errors":[{"code":1000,"message":"Invalid API Token"}],"result":null}`)
		return
	}
	fmt.Fprintf(w, `{"success":true,"errors":[],"messages":[],"result":{"id":"tok-1","status":%q}}`, status)
}

func (f *fakeCloudflare) user(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Auth-Key") == "" {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"success":false,"errors":[{"code":9106,"message":"Missing X-Auth-Key"}],"result":null}`)
		return
	}
	fmt.Fprintf(w, `{"success":true,"errors":[],"messages":[],"result":{"id":"user-1","email":%q}}`, r.Header.Get("X-Auth-Email"))
}

func (f *fakeCloudflare) update(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headers = append(f.headers, r.Header.Clone())
	var body updateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"success":false,"errors":[{"code":9207,"message":%q}]}`, err.Error())
		return
	}
	body.ID = r.PathValue("id")
	f.updates = append(f.updates, body)
	if f.updateRaw != "" {
		io.WriteString(w, f.updateRaw)
		return
	}
	if f.rejectUp {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"errors":[{"code":9005,"message":"Content for A record is invalid."}],"result":null}`)
		return
	}
	rec := ddns.Record{ID: body.ID, Name: body.Name, Content: body.Content, TTL: body.TTL, Proxied: body.Proxied}
	f.records[rec.Name] = rec
	json.NewEncoder(w).Encode(map[string]any{"success": true, "errors": []any{}, "result": recordJSON(rec)})
}

// configure changes the fake's behaviour while holding its lock.
func (f *fakeCloudflare) configure(fn func(f *fakeCloudflare)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeCloudflare) header(i int) http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers[i]
}

func (f *fakeCloudflare) updateCalls() []updateBody {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateBody(nil), f.updates...)
}

func (f *fakeCloudflare) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.headers)
}

func (f *fakeCloudflare) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeCloudflare) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func recordJSON(r ddns.Record) map[string]any {
	return map[string]any{
		"id": r.ID, "type": "A", "name": r.Name, "content": r.Content,
		"ttl": r.TTL, "proxied": r.Proxied, "zone_id": testZone,
	}
}

func testSettings(apiURL string) ddns.Settings {
	return ddns.Settings{
		AuthMethod: ddns.AuthToken,
		AuthKey:    testToken,
		ZoneID:     testZone,
		RecordName: testRecord,
		TTL:        120,
		SiteName:   "Home",
		APIURL:     apiURL,
	}
}

// recordingNotifier remembers every message it was asked to send.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
