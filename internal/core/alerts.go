package core

import (
	"context"
	"log"
	"sync"
)

// AlertSink receives low-stock alert strings after a settlement commits.
// Notify is best-effort fire-and-forget: implementations must not block and
// must swallow their own delivery failures (logging them at most). Emission
// happens strictly post-commit and never affects the settlement outcome.
type AlertSink interface {
	Notify(ctx context.Context, message string)
}

// LogAlertSink writes alerts to the process log. Default sink for the cmd
// binaries.
type LogAlertSink struct{}

func (LogAlertSink) Notify(_ context.Context, message string) {
	log.Printf("ALERT: %s", message)
}

// CollectorSink accumulates alerts in memory. Used by tests and by callers
// that surface alerts inline instead of forwarding them.
type CollectorSink struct {
	mu       sync.Mutex
	messages []string
}

func (c *CollectorSink) Notify(_ context.Context, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, message)
}

// Messages returns a copy of everything notified so far.
func (c *CollectorSink) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}
