package provider

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// mockHTTPClient records the last request and returns a canned response.
type mockHTTPClient struct {
	lastReq *HTTPRequest
	resp    *HTTPResponse
	err     error
}

func (m *mockHTTPClient) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestSendGrid_buildPayload_TextAndHTML(t *testing.T) {
	sg := &SendGrid{}
	msg := &Message{
		ID:       "abc",
		From:     "ion-noreply@tjhsst.edu",
		To:       []string{"a@example.com", "b@example.com"},
		Subject:  "[Ion] News: Snow day",
		TextBody: "text part",
		HTMLBody: "<h1>Hello</h1>",
	}

	payload := sg.buildPayload(msg)

	if len(payload.Content) != 2 {
		t.Fatalf("expected 2 content parts, got %d", len(payload.Content))
	}
	if payload.Content[0].Type != "text/plain" || payload.Content[1].Type != "text/html" {
		t.Errorf("content order = %s, %s", payload.Content[0].Type, payload.Content[1].Type)
	}
	if len(payload.Personalizations) != 1 || len(payload.Personalizations[0].To) != 2 {
		t.Fatalf("personalizations = %+v", payload.Personalizations)
	}
	if payload.CustomArgs["ion_notify_message_id"] != "abc" {
		t.Errorf("custom args = %v", payload.CustomArgs)
	}
}

func TestSendGrid_buildPayload_EmptyBody(t *testing.T) {
	payload := (&SendGrid{}).buildPayload(&Message{From: "a@x", To: []string{"b@x"}})
	if len(payload.Content) != 1 || payload.Content[0].Type != "text/plain" {
		t.Errorf("content = %+v", payload.Content)
	}
	if payload.CustomArgs != nil {
		t.Errorf("expected no custom args, got %v", payload.CustomArgs)
	}
}

func TestSendGrid_Send_Success(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{
		StatusCode: 202,
		Headers:    map[string]string{"X-Message-Id": "sg-123"},
	}}
	sg := NewSendGrid(ProviderConfig{APIKey: "key", Endpoint: "http://sg.test"}, client)

	result, err := sg.Send(context.Background(), &Message{
		From: "a@x", To: []string{"b@x"}, Subject: "s", TextBody: "t",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.ProviderMessageID != "sg-123" {
		t.Errorf("ProviderMessageID = %q", result.ProviderMessageID)
	}
	if result.Status != StatusSent {
		t.Errorf("Status = %q", result.Status)
	}
	if client.lastReq.URL != "http://sg.test/v3/mail/send" {
		t.Errorf("URL = %q", client.lastReq.URL)
	}
	if client.lastReq.Headers["Authorization"] != "Bearer key" {
		t.Errorf("Authorization = %q", client.lastReq.Headers["Authorization"])
	}

	var body sendgridPayload
	if err := json.Unmarshal(client.lastReq.Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body.Subject != "s" {
		t.Errorf("Subject = %q", body.Subject)
	}
}

func TestSendGrid_Send_Rejected(t *testing.T) {
	client := &mockHTTPClient{resp: &HTTPResponse{StatusCode: 401, Body: []byte("unauthorized")}}
	sg := NewSendGrid(ProviderConfig{APIKey: "bad"}, client)

	_, err := sg.Send(context.Background(), &Message{From: "a@x", To: []string{"b@x"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
}

func TestSendGrid_Send_TransportError(t *testing.T) {
	client := &mockHTTPClient{err: errors.New("connection refused")}
	sg := NewSendGrid(ProviderConfig{APIKey: "k"}, client)

	if _, err := sg.Send(context.Background(), &Message{From: "a@x", To: []string{"b@x"}}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendGrid_HealthCheck(t *testing.T) {
	ok := NewSendGrid(ProviderConfig{APIKey: "k"}, &mockHTTPClient{resp: &HTTPResponse{StatusCode: 200}})
	if err := ok.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	bad := NewSendGrid(ProviderConfig{APIKey: "k"}, &mockHTTPClient{resp: &HTTPResponse{StatusCode: 403}})
	if err := bad.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for 403")
	}
}
