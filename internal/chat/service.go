// Package chat implements the per-session chat state machine.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/surveychat/internal/csvlog"
	"github.com/ashureev/surveychat/internal/domain"
	"github.com/ashureev/surveychat/internal/metrics"
	"github.com/ashureev/surveychat/internal/openai"
	"github.com/ashureev/surveychat/internal/store"
)

// Confirmation is the fixed reply to a session's first message. The first
// message is always recorded as the participant's identifier and is never
// sent to the completion API, whatever its content.
const Confirmation = "Thanks! I've recorded your ID. You can now start asking questions."

// DefaultWindow is the number of prior turns sent upstream per message.
const DefaultWindow = 10

// Service orchestrates one chat turn: load history, branch on session
// state, call the completion API, persist, log. All collaborators are
// injected so tests can substitute in-memory fakes.
type Service struct {
	history store.HistoryStore
	csv     csvlog.Logger
	client  openai.Client
	window  int

	// sessionLocks serializes load→mutate→save per session so concurrent
	// requests for the same session cannot lose each other's turns.
	sessionLocks sync.Map
}

// NewService creates a chat service. window caps the number of prior
// turns sent upstream; values <= 0 fall back to DefaultWindow.
func NewService(history store.HistoryStore, csv csvlog.Logger, client openai.Client, window int) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Service{
		history: history,
		csv:     csv,
		client:  client,
		window:  window,
	}
}

// Respond handles one chat turn for sessionID and returns the reply text.
// A never-seen session registers the message as the participant's
// identifier; an established session relays it to the completion API.
func (s *Service) Respond(ctx context.Context, sessionID, message string) (string, error) {
	lock, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.history.Load(ctx)
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("load history: %w", err)
	}

	if log, ok := doc[sessionID]; !ok || !log.Registered() {
		return s.register(ctx, doc, sessionID, message)
	}
	return s.relay(ctx, doc, sessionID, message)
}

// register handles a session's first message: the text is the
// participant's self-reported identifier, not a question.
func (s *Service) register(ctx context.Context, doc domain.HistoryDocument, sessionID, message string) (string, error) {
	doc[sessionID] = append(doc[sessionID],
		domain.Message{Role: domain.RoleUserID, Content: message},
		domain.Message{Role: domain.RoleAssistant, Content: Confirmation},
	)

	if err := s.history.Save(ctx, doc); err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("save history: %w", err)
	}

	// The identifier doubles as both user_id and user message in the row.
	s.csv.Log(csvlog.Record{
		SessionID:   sessionID,
		UserID:      message,
		UserMessage: message,
		BotResponse: Confirmation,
	})
	metrics.ChatRequests.WithLabelValues("confirmation").Inc()
	slog.Info("Session registered", "session_id", sessionID)
	return Confirmation, nil
}

// relay handles a real conversational turn for an established session.
// Nothing is persisted and no CSV row is written when the upstream call
// fails.
func (s *Service) relay(ctx context.Context, doc domain.HistoryDocument, sessionID, message string) (string, error) {
	sessionLog := doc[sessionID]
	window := append(sessionLog.Window(s.window), domain.Message{Role: domain.RoleUser, Content: message})

	start := time.Now()
	reply, err := s.client.Complete(ctx, window)
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("completion: %w", err)
	}

	doc[sessionID] = append(sessionLog,
		domain.Message{Role: domain.RoleUser, Content: message},
		domain.Message{Role: domain.RoleAssistant, Content: reply},
	)
	if err := s.history.Save(ctx, doc); err != nil {
		metrics.ChatRequests.WithLabelValues("error").Inc()
		return "", fmt.Errorf("save history: %w", err)
	}

	s.csv.Log(csvlog.Record{
		SessionID:   sessionID,
		UserID:      sessionLog.UserID(),
		UserMessage: message,
		BotResponse: reply,
	})
	metrics.ChatRequests.WithLabelValues("reply").Inc()
	return reply, nil
}
