package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Alexsovich5/DAPP-sub000/internal/config"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
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
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
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

// useClient points newAPIClient at the test server for the duration of
// the test.
func (ts *testServer) useClient(t *testing.T) {
	t.Helper()
	old := newAPIClient
	newAPIClient = func() (*apiClient, error) {
		return ts.client(), nil
	}
	t.Cleanup(func() { newAPIClient = old })
}

var ctx = context.Background()

func writeProfileFile(t *testing.T, id string) string {
	t.Helper()
	p := profile.UserProfile{
		ID:        id,
		Version:   1,
		Interests: []string{"hiking", "philosophy"},
		CoreValues: map[string][]string{
			"life_goals": {"build a quiet homestead"},
		},
	}
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	path := filepath.Join(t.TempDir(), id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}
	return path
}

const scoreResponse = `{
	"id": "11111111-2222-3333-4444-555555555555",
	"user_a": "alice",
	"user_b": "bob",
	"overall_score": 72.5,
	"confidence": 64.0,
	"breakdown": {"interests": 100.0, "values": 55.0},
	"semantic": {"text_similarity": 41.2, "vector_alignment": {}},
	"insights": {
		"unique_factors": [],
		"strengths": ["You share 2 interests"],
		"growth_areas": [],
		"conversation_starters": ["Ask about hiking"]
	},
	"generated_at": "2026-01-01T00:00:00Z"
}`

func TestScoreCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /score": scoreResponse,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	pathA := writeProfileFile(t, "alice")
	pathB := writeProfileFile(t, "bob")

	rootCmd.SetArgs([]string{"score", "--user-a", pathA, "--user-b", pathB, "--json"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/score" {
		t.Errorf("request = %s %s, want POST /score", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body struct {
		UserA *profile.UserProfile `json:"user_a"`
		UserB *profile.UserProfile `json:"user_b"`
	}
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body.UserA == nil || body.UserA.ID != "alice" {
		t.Errorf("body.user_a = %+v, want alice", body.UserA)
	}
	if body.UserB == nil || body.UserB.ID != "bob" {
		t.Errorf("body.user_b = %+v, want bob", body.UserB)
	}
}

func TestScoreCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	// Flag values persist on the shared command between Execute calls;
	// clear any set by earlier tests.
	scoreCmd.Flags().Set("user-a", "")
	scoreCmd.Flags().Set("user-b", "")

	rootCmd.SetArgs([]string{"score"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestScoreCommand_DegradedResult(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /score": `{
			"id": "deg-1", "user_a": "alice", "user_b": "bob",
			"overall_score": 50.0, "confidence": 10.0,
			"breakdown": {}, "semantic": {"text_similarity": 0, "vector_alignment": null},
			"insights": {"unique_factors": null, "strengths": null, "growth_areas": null, "conversation_starters": null},
			"generated_at": "2026-01-01T00:00:00Z",
			"error": "scoring_panic"
		}`,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	pathA := writeProfileFile(t, "alice")
	pathB := writeProfileFile(t, "bob")

	rootCmd.SetArgs([]string{"score", "--user-a", pathA, "--user-b", pathB})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for degraded result")
	}
	if !strings.Contains(err.Error(), "degraded") {
		t.Errorf("error = %q, want it to mention 'degraded'", err.Error())
	}
}

func TestScoreCommand_InvalidProfileFile(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"version": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	other := writeProfileFile(t, "bob")

	rootCmd.SetArgs([]string{"score", "--user-a", path, "--user-b", other})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected validation error for profile without user id")
	}
}

func TestMatchCommand_RanksByOverall(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /match": `{
			"results": [
				{"id": "r1", "user_a": "alice", "user_b": "bob", "overall_score": 40.0, "confidence": 50.0,
				 "breakdown": {}, "semantic": {"text_similarity": 0, "vector_alignment": {}},
				 "insights": {"unique_factors": null, "strengths": null, "growth_areas": null, "conversation_starters": null},
				 "generated_at": "2026-01-01T00:00:00Z"},
				{"id": "r2", "user_a": "alice", "user_b": "carol", "overall_score": 90.0, "confidence": 70.0,
				 "breakdown": {}, "semantic": {"text_similarity": 0, "vector_alignment": {}},
				 "insights": {"unique_factors": null, "strengths": null, "growth_areas": null, "conversation_starters": null},
				 "generated_at": "2026-01-01T00:00:00Z"}
			],
			"failed": 1
		}`,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	target := writeProfileFile(t, "alice")
	candidates := filepath.Join(t.TempDir(), "pool.json")
	pool := []profile.UserProfile{
		{ID: "bob", Version: 1},
		{ID: "carol", Version: 1},
	}
	data, _ := json.Marshal(pool)
	if err := os.WriteFile(candidates, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"match", "--target", target, "--candidates", candidates, "--limit", "1"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	var body struct {
		Target     *profile.UserProfile  `json:"target"`
		Candidates []profile.UserProfile `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body.Target == nil || body.Target.ID != "alice" {
		t.Errorf("target = %+v, want alice", body.Target)
	}
	if len(body.Candidates) != 2 {
		t.Errorf("candidates = %d, want 2", len(body.Candidates))
	}
}

func TestTrainCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /corpus/train": `{"trained": true, "profile_count": 2}`,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	profilesPath := filepath.Join(t.TempDir(), "corpus.json")
	pool := []profile.UserProfile{
		{ID: "bob", Version: 1, Interests: []string{"chess"}},
		{ID: "carol", Version: 1, Interests: []string{"sailing"}},
	}
	data, _ := json.Marshal(pool)
	if err := os.WriteFile(profilesPath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"train", "--profiles", profilesPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if ts.requests[0].Path != "/corpus/train" {
		t.Errorf("path = %q, want /corpus/train", ts.requests[0].Path)
	}
}

func TestResultsListCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /results": `[` + scoreResponse + `]`,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"results", "list", "--user", "alice", "--limit", "5"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	path := ts.requests[0].Path
	if !strings.Contains(path, "user=alice") || !strings.Contains(path, "limit=5") {
		t.Errorf("path = %q, want user=alice and limit=5", path)
	}
}

func TestResultsShowCommand(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /results/11111111-2222-3333-4444-555555555555": scoreResponse,
	})
	ts.useClient(t)
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"results", "show", "11111111-2222-3333-4444-555555555555"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestAPIClientAuth(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = "my-secret-token"

	_, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if ts.requests[0].Auth != "Bearer my-secret-token" {
		t.Errorf("auth = %q, want 'Bearer my-secret-token'", ts.requests[0].Auth)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/results/abc")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4600
	cfg.Log.Level = "debug"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4600" {
			found = true
		}
	}
	if !found {
		t.Error("expected to find server.port=4600 in ShowAll output")
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := pidFilePath(t.TempDir())
	if err := writePIDFile(path); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	pid, err := readPIDFile(path)
	if err != nil {
		t.Fatalf("read pid: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("pid = %d, want %d", pid, os.Getpid())
	}
	removePIDFile(path)
	if _, err := readPIDFile(path); err == nil {
		t.Error("expected error after pid file removed")
	}
}
