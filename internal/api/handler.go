// Package api provides HTTP handlers for the survey chat relay.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/surveychat/internal/chat"
	"github.com/ashureev/surveychat/internal/store"
)

// Handler provides common handler utilities.
type Handler struct {
	chat    *chat.Service
	history store.HistoryStore
	csvPath string
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(chatSvc *chat.Service, history store.HistoryStore, csvPath string) *Handler {
	return &Handler{
		chat:    chatSvc,
		history: history,
		csvPath: csvPath,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
