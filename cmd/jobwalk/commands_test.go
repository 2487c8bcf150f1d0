package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"session not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestCreateSessionRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /sessions": `{"id":"sess-123","state":{"job":{"address":"45 Oak Ln"}}}`,
	})

	client := ts.client()

	resp, err := client.post(ctx, "/sessions", map[string]string{
		"address":   "45 Oak Ln",
		"homeowner": "J. Whitfield",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rec struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &rec); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if rec.ID != "sess-123" {
		t.Errorf("id = %q, want sess-123", rec.ID)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}

	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/sessions" {
		t.Errorf("request = %s %s", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["address"] != "45 Oak Ln" {
		t.Errorf("body.address = %q", body["address"])
	}
}

func TestAnswerRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /sessions/sess-123/answers": `{"id":"sess-123","state":{"tags":["crawlspace"],"suggestedSolutionIds":[]}}`,
	})

	client := ts.client()

	resp, err := client.post(ctx, "/sessions/sess-123/answers", map[string]string{
		"questionId": "foundation_type",
		"value":      "crawlspace",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rec struct {
		State struct {
			Tags []string `json:"tags"`
		} `json:"state"`
	}
	if err := decodeJSON(resp, &rec); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rec.State.Tags) != 1 || rec.State.Tags[0] != "crawlspace" {
		t.Errorf("tags = %v", rec.State.Tags)
	}
}

func TestDeleteWithBody(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"DELETE /sessions/sess-123/flightplans/encap/lines": `{"id":"sess-123","state":{}}`,
	})

	client := ts.client()

	resp, err := client.delete(ctx, "/sessions/sess-123/flightplans/encap/lines",
		map[string]string{"item": "Extra sealant kit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if !strings.Contains(ts.requests[0].Body, "Extra sealant kit") {
		t.Errorf("body = %q", ts.requests[0].Body)
	}
}

func TestDecodeJSONErrorStatus(t *testing.T) {
	ts := newTestServer(t, nil)

	client := ts.client()

	resp, err := client.get(ctx, "/sessions/missing")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var v any
	err = decodeJSON(resp, &v)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want status in message", err)
	}
	if !strings.Contains(err.Error(), "session not found") {
		t.Errorf("error = %v, want server message included", err)
	}
}

func TestReadBodyErrorStatus(t *testing.T) {
	ts := newTestServer(t, nil)

	client := ts.client()

	resp, err := client.get(ctx, "/sessions/missing/summary")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	if _, err := readBody(resp); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestParseSegments(t *testing.T) {
	segments, err := parseSegments("30:90, 20:90,30:90,20:90")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(segments))
	}
	if segments[0].Len != 30 || segments[0].TurnDeg != 90 {
		t.Errorf("first segment = %+v", segments[0])
	}
	if segments[1].Len != 20 {
		t.Errorf("second segment = %+v", segments[1])
	}
}

func TestParseSegmentsInvalid(t *testing.T) {
	for _, in := range []string{"30", "30:", "x:90", "30:y", ""} {
		if _, err := parseSegments(in); err == nil {
			t.Errorf("parseSegments(%q): expected error", in)
		}
	}
}

func TestColorize(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "hello")
	if strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}

	noColor = false
	result = colorize(colorGreen, "hello")
	if !strings.Contains(result, "\033") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}
