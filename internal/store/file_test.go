package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ashureev/surveychat/internal/domain"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatHistory.json")
	return NewFileStore(path), path
}

func TestLoadMissingFileReturnsEmptyDocument(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("Expected empty document, got %d sessions", len(doc))
	}
}

func TestLoadCorruptFileReturnsEmptyDocument(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc) != 0 {
		t.Errorf("Expected empty document for corrupt file, got %d sessions", len(doc))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	doc := domain.HistoryDocument{
		"sess-1": {
			{Role: domain.RoleUserID, Content: "participant-7"},
			{Role: domain.RoleAssistant, Content: "ok"},
			{Role: domain.RoleUser, Content: "hello"},
			{Role: domain.RoleAssistant, Content: "hi"},
		},
	}

	if err := s.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(doc, got) {
		t.Errorf("Round trip mismatch:\nwant %+v\ngot  %+v", doc, got)
	}
}

func TestReloadAndResaveIsIdempotent(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	doc := domain.HistoryDocument{
		"sess-1": {
			{Role: domain.RoleUserID, Content: "participant-7"},
			{Role: domain.RoleAssistant, Content: "ok"},
		},
		"sess-2": {
			{Role: domain.RoleUserID, Content: "participant-9"},
			{Role: domain.RoleAssistant, Content: "ok"},
		},
	}
	if err := s.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read history file: %v", err)
	}

	reloaded, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Save(context.Background(), reloaded); err != nil {
		t.Fatalf("Resave failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read history file: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Expected load→save round trip to reproduce the file byte for byte")
	}
}
