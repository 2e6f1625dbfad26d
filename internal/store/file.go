package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ashureev/surveychat/internal/domain"
)

// FileStore persists the history document as a single indented JSON file.
// A write lock keeps concurrent savers from interleaving partial writes;
// per-session ordering is the chat service's responsibility.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed history store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted document. A missing, unreadable, or corrupt
// file is treated as "no history yet" and yields an empty document.
func (s *FileStore) Load(_ context.Context) (domain.HistoryDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read history file, starting empty", "path", s.path, "error", err)
		}
		return domain.HistoryDocument{}, nil
	}

	var doc domain.HistoryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("History file is not valid JSON, starting empty", "path", s.path, "error", err)
		return domain.HistoryDocument{}, nil
	}
	if doc == nil {
		doc = domain.HistoryDocument{}
	}
	return doc, nil
}

// Save overwrites the persisted file with the full document. The file is
// indented so operators can inspect it directly.
func (s *FileStore) Save(_ context.Context, doc domain.HistoryDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
