// Package twitter posts announcement summaries to the school's Twitter
// account.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/sungwon/ion-notify/internal/config"
)

// DefaultEndpoint is the status-update endpoint.
const DefaultEndpoint = "https://api.twitter.com/1.1/statuses/update.json"

const defaultTimeout = 15 * time.Second

// Client posts status updates signed with the account's OAuth1 credentials.
// A Client built without complete credentials is disabled.
type Client struct {
	config     *oauth1.Config
	token      *oauth1.Token
	base       *http.Client
	endpoint   string
	screenName string
}

// NewClient creates a Client from configuration.
func NewClient(cfg config.TwitterConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		base:       &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		screenName: cfg.ScreenName,
	}
	if cfg.Enabled() {
		c.config = oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
		c.token = oauth1.NewToken(cfg.AccessTokenKey, cfg.AccessTokenSecret)
	}
	return c
}

// Enabled reports whether all four credentials were configured.
func (c *Client) Enabled() bool {
	return c.config != nil
}

// ScreenName returns the account handle used in permalinks.
func (c *Client) ScreenName() string {
	return c.screenName
}

// PostStatus posts status and returns the raw response body whatever the
// HTTP status code. A disabled client returns "" without any request.
func (c *Client) PostStatus(ctx context.Context, status string) (string, error) {
	if !c.Enabled() {
		return "", nil
	}

	form := url.Values{"status": {status}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := c.config.Client(context.WithValue(ctx, oauth1.HTTPClient, c.base), c.token)
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twitter: post status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("twitter: read response: %w", err)
	}
	return string(body), nil
}

// StatusID extracts the "id" field of a status-update response. Responses
// that are not JSON objects or carry no id report false.
func StatusID(raw string) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return "", false
	}
	id, ok := obj["id"]
	if !ok || id == nil {
		return "", false
	}
	return fmt.Sprint(id), true
}

// Permalink returns the public URL of a posted status.
func Permalink(screenName, id string) string {
	return "https://twitter.com/" + screenName + "/status/" + id
}
