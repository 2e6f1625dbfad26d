// Package store provides persistence for the chat history document.
package store

import (
	"context"

	"github.com/ashureev/surveychat/internal/domain"
)

// HistoryStore defines the interface for loading and saving the full
// history document. The document is the sole source of truth for session
// state: it is reloaded at the start of every request and rewritten in
// full at the end of every request that mutates it.
type HistoryStore interface {
	// Load reads the persisted document. A missing or unreadable file
	// yields an empty document, not an error.
	Load(ctx context.Context) (domain.HistoryDocument, error)

	// Save serializes the full document and overwrites the persisted file.
	Save(ctx context.Context, doc domain.HistoryDocument) error
}
