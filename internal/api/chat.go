package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Fixed external error strings. Callers get one uniform message per
// failure class; no internal detail leaks.
const (
	errSomethingWentWrong = "Something went wrong."
	errHistoryUnavailable = "Could not retrieve chat history."
	errDownloadFailed     = "Error downloading file."
)

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatResponse is the POST /chat response body.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat handles POST /chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" || req.SessionID == "" {
		Error(w, http.StatusBadRequest, "message and sessionId are required")
		return
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	slog.Info("Chat request",
		"session_id", req.SessionID,
		"message_length", len(req.Message),
		"request_id", reqID,
	)

	reply, err := h.chat.Respond(r.Context(), req.SessionID, req.Message)
	if err != nil {
		slog.Error("Chat turn failed", "session_id", req.SessionID, "request_id", reqID, "error", err)
		Error(w, http.StatusInternalServerError, errSomethingWentWrong)
		return
	}

	JSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// HandleHistory handles GET /chat-history, returning the full history
// document as JSON.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	doc, err := h.history.Load(r.Context())
	if err != nil {
		slog.Error("History retrieval failed", "error", err)
		Error(w, http.StatusInternalServerError, errHistoryUnavailable)
		return
	}
	JSON(w, http.StatusOK, doc)
}

// HandleDownload handles GET /download-chat-logs, streaming the CSV file
// as an attachment named chatLogs.csv.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(h.csvPath)
	if err != nil {
		slog.Error("CSV download failed", "path", h.csvPath, "error", err)
		http.Error(w, errDownloadFailed, http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		slog.Error("CSV download failed", "path", h.csvPath, "error", err)
		http.Error(w, errDownloadFailed, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="chatLogs.csv"`)
	w.Header().Set("Content-Type", "text/csv")
	http.ServeContent(w, r, "chatLogs.csv", info.ModTime(), f)
}

// RegisterRoutes registers the relay routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Get("/chat-history", h.HandleHistory)
	r.Get("/download-chat-logs", h.HandleDownload)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}
