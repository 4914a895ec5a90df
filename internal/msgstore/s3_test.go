package msgstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3Client implements the s3API interface for testing.
type mockS3Client struct {
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte), contentTypes: make(map[string]string)}
}

func (m *mockS3Client) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*params.Key] = data
	if params.ContentType != nil {
		m.contentTypes[*params.Key] = *params.ContentType
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*params.Key]
	if !ok {
		return nil, &types.NoSuchKey{Message: stringPtr(fmt.Sprintf("key %q not found", *params.Key))}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(bytes.NewReader(data)),
	}, nil
}

func stringPtr(s string) *string { return &s }

func TestS3Store_PutAndGet(t *testing.T) {
	mock := newMockS3Client()
	store := NewS3Store(mock, "ion-archive", "sent/")

	ctx := context.Background()
	data := []byte("s3 test data")

	if err := store.Put(ctx, "msg-001", data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "msg-001")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("Get = %q, want %q", got, data)
	}
	if ct := mock.contentTypes["sent/msg-001.eml"]; ct != "message/rfc822" {
		t.Errorf("content type = %q, want message/rfc822", ct)
	}
}

func TestS3Store_GetNotFound(t *testing.T) {
	store := NewS3Store(newMockS3Client(), "ion-archive", "sent/")

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get non-existent: got err=%v, want ErrNotFound", err)
	}
}

func TestS3Store_PutError(t *testing.T) {
	mock := newMockS3Client()
	mock.putErr = errors.New("access denied")
	store := NewS3Store(mock, "ion-archive", "")

	err := store.Put(context.Background(), "msg", []byte("x"))
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Put: err = %v, want wrapped access error", err)
	}
}

func TestS3Store_KeyPrefix(t *testing.T) {
	mock := newMockS3Client()
	store := NewS3Store(mock, "ion-archive", "emails/")

	if err := store.Put(context.Background(), "msg-pfx", []byte("prefix test")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	expectedKey := "emails/msg-pfx.eml"
	if _, ok := mock.objects[expectedKey]; !ok {
		keys := make([]string, 0, len(mock.objects))
		for k := range mock.objects {
			keys = append(keys, k)
		}
		t.Errorf("expected key %q in mock objects, got keys: %v", expectedKey, keys)
	}
}

func TestS3Store_InvalidID(t *testing.T) {
	store := NewS3Store(newMockS3Client(), "ion-archive", "")
	if err := store.Put(context.Background(), "a/b", nil); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Put: err = %v, want ErrInvalidID", err)
	}
}
