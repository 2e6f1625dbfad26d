package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashureev/surveychat/internal/domain"
)

func TestCompleteReturnsReply(t *testing.T) {
	t.Parallel()

	var gotReq struct {
		Model    string           `json:"model"`
		Messages []domain.Message `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"choices":[{"message":{"content":"hi there"}}]}`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer srv.Close()

	c := New("test-key", "gpt-4", srv.URL, 5*time.Second)
	reply, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("Expected reply %q, got %q", "hi there", reply)
	}
	if gotReq.Model != "gpt-4" {
		t.Errorf("Expected model gpt-4, got %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("Unexpected messages sent upstream: %+v", gotReq.Messages)
	}
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New("test-key", "gpt-4", srv.URL, 5*time.Second)
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("Expected error for non-2xx status")
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("not json")); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer srv.Close()

	c := New("test-key", "gpt-4", srv.URL, 5*time.Second)
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("Expected error for malformed response body")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"choices":[]}`)); err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}))
	defer srv.Close()

	c := New("test-key", "gpt-4", srv.URL, 5*time.Second)
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("Expected error for empty choices")
	}
}

func TestCompleteUnreachableEndpoint(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Deliberately closed: connection refused.

	c := New("test-key", "gpt-4", srv.URL, time.Second)
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("Expected error for unreachable endpoint")
	}
}
