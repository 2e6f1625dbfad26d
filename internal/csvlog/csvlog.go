// Package csvlog appends one flattened record per chat exchange to a CSV
// file shared with survey analysts.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ashureev/surveychat/internal/metrics"
)

// header is a versioned contract: the file is exposed for bulk download,
// so column order and titles must not change.
var header = []string{
	"Survey Session ID",
	"User ID (First Message)",
	"User Message",
	"Bot Response",
	"Timestamp",
}

// Record is one flattened chat exchange. The timestamp is captured when
// the record is logged, not when the worker drains it.
type Record struct {
	SessionID   string
	UserID      string
	UserMessage string
	BotResponse string
}

// Logger records chat exchanges. Logging is best-effort: it must never
// block or fail the triggering chat request.
type Logger interface {
	Log(rec Record)
	Close() error
}

// FileLogger writes records to a CSV file from a single background
// worker, keeping a slow disk off the request path.
type FileLogger struct {
	path      string
	queue     chan entry
	done      chan struct{}
	closeOnce sync.Once
}

type entry struct {
	rec Record
	ts  time.Time
}

// New creates a CSV logger writing to path and starts its worker.
// queueSize bounds in-flight records; when the queue is full new records
// are dropped with a warning rather than blocking the caller.
func New(path string, queueSize int) *FileLogger {
	if queueSize <= 0 {
		queueSize = 256
	}
	l := &FileLogger{
		path:  path,
		queue: make(chan entry, queueSize),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

// Log enqueues one exchange for the background worker.
func (l *FileLogger) Log(rec Record) {
	select {
	case l.queue <- entry{rec: rec, ts: time.Now().UTC()}:
	default:
		metrics.CSVLogFailures.Inc()
		slog.Warn("CSV log queue full, dropping record", "session_id", rec.SessionID)
	}
}

// Close stops the worker after draining queued records. Log must not be
// called after Close.
func (l *FileLogger) Close() error {
	l.closeOnce.Do(func() {
		close(l.queue)
		<-l.done
	})
	return nil
}

func (l *FileLogger) run() {
	defer close(l.done)
	for e := range l.queue {
		if err := l.append(e); err != nil {
			metrics.CSVLogFailures.Inc()
			slog.Error("CSV write failed", "path", l.path, "session_id", e.rec.SessionID, "error", err)
		}
	}
}

// append opens the file per record. Volume is low, and reopening keeps
// the header check and append semantics trivially correct.
func (l *FileLogger) append(e entry) error {
	writeHeader := false
	if info, err := os.Stat(l.path); os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := w.Write([]string{
		e.rec.SessionID,
		e.rec.UserID,
		e.rec.UserMessage,
		e.rec.BotResponse,
		e.ts.Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	w.Flush()
	return w.Error()
}
