package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() excuse.Request {
	return excuse.Request{
		Scenario:           excuse.ScenarioMissedClass,
		Relationship:       excuse.RelationshipTeacher,
		Timing:             excuse.TimingYesterday,
		BelievabilityLevel: excuse.Believable,
		Tone:               excuse.ToneFormal,
	}
}

func newTestClient(url string) *Client {
	c := NewClient(url, 2*time.Second, discardLogger())
	c.retryDelay = 10 * time.Millisecond
	return c
}

// flakyListener accepts and immediately closes the first n connections.
type flakyListener struct {
	net.Listener
	drop atomic.Int32
}

func (l *flakyListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}
		if l.drop.Add(-1) >= 0 {
			conn.Close()
			continue
		}
		return conn, nil
	}
}

func TestSessionIDFormat(t *testing.T) {
	re := regexp.MustCompile(`^session_\d{13}_[0-9a-f]{9}$`)
	id := NewSessionID()
	if !re.MatchString(id) {
		t.Errorf("unexpected session id %q", id)
	}
	if NewSessionID() == id {
		t.Error("session ids should differ")
	}
}

func TestGenerateSuccess(t *testing.T) {
	var gotSession string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotSession = r.Header.Get("X-Session-ID")
		json.NewDecoder(r.Body).Decode(&gotBody)
		io.WriteString(w, `{"excuses":[{"id":"a","mainExcuse":"m","believabilityScore":8,"believabilityLabel":"l","formats":{"text":"t","email":{"subject":"s","body":"b"},"verbal":"v"}}],"generationId":"gen_1_x"}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	res, err := c.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.GenerationID != "gen_1_x" || len(res.Excuses) != 1 {
		t.Errorf("unexpected result %+v", res)
	}
	if gotSession != c.SessionID() {
		t.Errorf("session header = %q, want %q", gotSession, c.SessionID())
	}
	if gotBody["tone"] != "formal" {
		t.Errorf("tone = %v", gotBody["tone"])
	}
	if _, ok := gotBody["transport"]; ok {
		t.Error("empty transport should be omitted")
	}
}

func TestGenerateRetriesOnceOnTransportFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `{"excuses":[],"generationId":"gen_2_y"}`)
	}))
	fl := &flakyListener{Listener: srv.Listener}
	fl.drop.Store(1)
	srv.Listener = fl
	srv.Start()
	defer srv.Close()

	c := newTestClient(srv.URL)
	// Fresh connections so the dropped one is not reused.
	c.httpClient.Transport = &http.Transport{DisableKeepAlives: true}

	res, err := c.Generate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.GenerationID != "gen_2_y" {
		t.Errorf("generation id = %q", res.GenerationID)
	}
	if calls.Load() != 1 {
		t.Errorf("handler calls = %d", calls.Load())
	}
}

func TestGenerateGivesUpAfterOneRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	start := time.Now()
	_, err := c.Generate(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an APIError: %v", err)
	}
	if time.Since(start) < c.retryDelay {
		t.Error("expected retry delay before second attempt")
	}
}

func TestGenerateDoesNotRetryHTTPErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"Failed to generate excuses","details":"Rate limit reached"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), sampleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Details != "Rate limit reached" {
		t.Errorf("unexpected error %+v", apiErr)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestGenerateNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "<html>bad gateway</html>")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Generate(context.Background(), sampleRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Unknown error" {
		t.Fatalf("expected Unknown error APIError, got %v", err)
	}
}

func TestTrackNeverFails(t *testing.T) {
	got := make(chan excuse.Interaction, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in excuse.Interaction
		json.NewDecoder(r.Body).Decode(&in)
		got <- in
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.Track(context.Background(), excuse.Interaction{GenerationID: "gen_1", ActionType: excuse.ActionRegenerate})

	select {
	case in := <-got:
		if in.ActionType != excuse.ActionRegenerate {
			t.Errorf("action = %q", in.ActionType)
		}
	case <-time.After(time.Second):
		t.Fatal("track request not received")
	}

	srv.Close()
	c.Track(context.Background(), excuse.Interaction{GenerationID: "gen_1", ActionType: excuse.ActionCopy})
}

func TestScenariosAndPopular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/scenarios":
			json.NewEncoder(w).Encode(excuse.ScenarioDefinitions)
		case "/api/scenarios/popular":
			if r.URL.Query().Get("limit") != "2" {
				t.Errorf("limit = %q", r.URL.Query().Get("limit"))
			}
			io.WriteString(w, `[{"scenario":"late_to_work","totalGenerations":4}]`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	defs, err := c.Scenarios(context.Background())
	if err != nil || len(defs) != len(excuse.ScenarioDefinitions) {
		t.Fatalf("Scenarios: %v (%d)", err, len(defs))
	}
	pop, err := c.PopularScenarios(context.Background(), 2)
	if err != nil || len(pop) != 1 || pop[0].TotalGenerations != 4 {
		t.Fatalf("PopularScenarios: %v %+v", err, pop)
	}
}
