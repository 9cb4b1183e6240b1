package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/identito/auth-service/internal/core/domain"
	"github.com/identito/auth-service/internal/core/ports"
)

type captureAudit struct {
	mu     sync.Mutex
	events []ports.AuthEventInput
}

func (c *captureAudit) Record(_ context.Context, e ports.AuthEventInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captureAudit) snapshot() []ports.AuthEventInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ports.AuthEventInput, len(c.events))
	copy(out, c.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	sink := &captureAudit{}
	d := NewDispatcher(2, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.AuthEventInput{Email: "a@x.com", Action: domain.ActionRegistered})
	d.Enqueue(ports.AuthEventInput{Email: "b@x.com", Action: domain.ActionLoginFailed})

	waitFor(t, func() bool { return len(sink.snapshot()) == 2 })
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	sink := &captureAudit{}
	d := NewDispatcher(4, sink, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	sequence := []domain.AuthAction{
		domain.ActionRegistered,
		domain.ActionLoginSucceeded,
		domain.ActionSessionCreated,
		domain.ActionSessionDestroyed,
	}
	for _, action := range sequence {
		d.Enqueue(ports.AuthEventInput{Email: "a@x.com", Action: action})
	}

	waitFor(t, func() bool { return len(sink.snapshot()) == len(sequence) })

	got := sink.snapshot()
	for i, action := range sequence {
		if got[i].Action != action {
			t.Fatalf("event %d out of order: got %s, want %s", i, got[i].Action, action)
		}
	}
}

func TestDispatcher_ShardIsStable(t *testing.T) {
	d := NewDispatcher(8, &captureAudit{}, zerolog.Nop())

	first := d.shardIndex("a@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("a@x.com") != first {
			t.Fatalf("shard index must be deterministic per email")
		}
	}
}
