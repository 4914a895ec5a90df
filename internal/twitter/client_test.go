package twitter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sungwon/ion-notify/internal/config"
)

func testConfig(endpoint string) config.TwitterConfig {
	return config.TwitterConfig{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessTokenKey:    "ak",
		AccessTokenSecret: "as",
		ScreenName:        "tjintranet",
		Endpoint:          endpoint,
	}
}

func TestClient_PostStatus(t *testing.T) {
	var gotStatus, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		gotStatus = form.Get("status")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1234567890123456789,"text":"hi"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	resp, err := c.PostStatus(context.Background(), "Snow day: closed... - https://x")
	if err != nil {
		t.Fatalf("PostStatus() error = %v", err)
	}

	if gotStatus != "Snow day: closed... - https://x" {
		t.Errorf("status = %q", gotStatus)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") || !strings.Contains(gotAuth, `oauth_consumer_key="ck"`) {
		t.Errorf("Authorization = %q, want OAuth1 header", gotAuth)
	}
	if !strings.Contains(gotAuth, `oauth_token="ak"`) {
		t.Errorf("Authorization missing access token: %q", gotAuth)
	}

	id, ok := StatusID(resp)
	if !ok || id != "1234567890123456789" {
		t.Errorf("StatusID() = %q, %v", id, ok)
	}
}

func TestClient_PostStatus_ErrorBodyReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"code":187,"message":"Status is a duplicate."}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(testConfig(srv.URL)).PostStatus(context.Background(), "dup")
	if err != nil {
		t.Fatalf("PostStatus() error = %v", err)
	}
	if !strings.Contains(resp, "duplicate") {
		t.Errorf("response = %q", resp)
	}
	if _, ok := StatusID(resp); ok {
		t.Error("error response should carry no id")
	}
}

func TestClient_Disabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AccessTokenSecret = ""
	c := NewClient(cfg)

	if c.Enabled() {
		t.Fatal("client with missing credential should be disabled")
	}
	resp, err := c.PostStatus(context.Background(), "status")
	if err != nil || resp != "" {
		t.Errorf("PostStatus() = %q, %v; want empty, nil", resp, err)
	}
	if calls.Load() != 0 {
		t.Errorf("server received %d requests, want 0", calls.Load())
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	if _, err := NewClient(testConfig(endpoint)).PostStatus(context.Background(), "s"); err == nil {
		t.Error("expected transport error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(config.TwitterConfig{})
	if c.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q", c.endpoint)
	}
	if c.base.Timeout != defaultTimeout {
		t.Errorf("timeout = %v", c.base.Timeout)
	}
}

func TestStatusID(t *testing.T) {
	tests := []struct {
		raw    string
		wantID string
		wantOK bool
	}{
		{`{"id": 42}`, "42", true},
		{`{"id": 9007199254740993}`, "9007199254740993", true},
		{`{"id_str": "42"}`, "", false},
		{`{"id": null}`, "", false},
		{`not json`, "", false},
		{``, "", false},
		{`[1,2]`, "", false},
	}

	for _, tt := range tests {
		id, ok := StatusID(tt.raw)
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("StatusID(%q) = %q, %v; want %q, %v", tt.raw, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestPermalink(t *testing.T) {
	if got := Permalink("tjintranet", "42"); got != "https://twitter.com/tjintranet/status/42" {
		t.Errorf("Permalink() = %q", got)
	}
}
