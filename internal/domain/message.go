// Package domain contains core domain types for the survey chat relay.
package domain

// Message roles. RoleUserID is a sentinel: the first entry of every
// registered session's log carries the participant's self-reported
// identifier, never a conversational turn.
const (
	RoleUserID    = "user_id"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's conversation log.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationLog is the ordered message log for one session. Entries are
// appended monotonically; the log is never truncated in storage.
type ConversationLog []Message

// HistoryDocument maps session IDs to their conversation logs. The whole
// document is the unit of read and write; there is no partial load or save.
type HistoryDocument map[string]ConversationLog

// Registered reports whether the log already carries a user_id entry.
func (l ConversationLog) Registered() bool {
	for _, m := range l {
		if m.Role == RoleUserID {
			return true
		}
	}
	return false
}

// UserID returns the participant identifier recorded as the log's user_id
// entry, or "N/A" when none exists.
func (l ConversationLog) UserID() string {
	for _, m := range l {
		if m.Role == RoleUserID {
			return m.Content
		}
	}
	return "N/A"
}

// Window returns the last at most n conversational entries. The
// registration preamble — the user_id entry and the canned confirmation
// that immediately follows it — is never part of the window handed to
// the completion API.
func (l ConversationLog) Window(n int) []Message {
	start := 0
	if len(l) > 0 && l[0].Role == RoleUserID {
		start = 1
		if len(l) > 1 && l[1].Role == RoleAssistant {
			start = 2
		}
	}

	turns := make([]Message, 0, len(l)-start)
	for _, m := range l[start:] {
		if m.Role == RoleUser || m.Role == RoleAssistant {
			turns = append(turns, m)
		}
	}
	if n >= 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}
