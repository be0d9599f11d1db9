package moderation

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/store"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type postedMessage struct {
	ChannelID string
	Text      string
}

type gatewayCalls struct {
	deleted []string
	bans    []string
	grants  []string
	revokes []string
	posts   []postedMessage
	audits  []string
	dms     []string
}

// fakeGateway records every call instead of talking to a platform.
type fakeGateway struct {
	mu       sync.Mutex
	calls    gatewayCalls
	nextID   int
	banErr   error
	purgeErr error
}

func (f *fakeGateway) DeleteMessage(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.deleted = append(f.calls.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeGateway) BanUser(_ context.Context, guildID, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.banErr != nil {
		return f.banErr
	}
	f.calls.bans = append(f.calls.bans, guildID+"/"+userID)
	return nil
}

func (f *fakeGateway) GrantRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.grants = append(f.calls.grants, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeGateway) RevokeRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.revokes = append(f.calls.revokes, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakeGateway) PostMessage(_ context.Context, channelID, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.calls.posts = append(f.calls.posts, postedMessage{ChannelID: channelID, Text: text})
	return fmt.Sprintf("posted-%d", f.nextID), nil
}

func (f *fakeGateway) PostAuditLog(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.audits = append(f.calls.audits, text)
	return nil
}

func (f *fakeGateway) NotifyUser(_ context.Context, userID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.dms = append(f.calls.dms, userID+": "+text)
	return nil
}

func (f *fakeGateway) PurgeMessages(_ context.Context, _ string, amount int) (int, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	return amount, nil
}

func (f *fakeGateway) snapshot() gatewayCalls {
	f.mu.Lock()
	defer f.mu.Unlock()
	return gatewayCalls{
		deleted: append([]string(nil), f.calls.deleted...),
		bans:    append([]string(nil), f.calls.bans...),
		grants:  append([]string(nil), f.calls.grants...),
		revokes: append([]string(nil), f.calls.revokes...),
		posts:   append([]postedMessage(nil), f.calls.posts...),
		audits:  append([]string(nil), f.calls.audits...),
		dms:     append([]string(nil), f.calls.dms...),
	}
}

// countingStore counts Saves, can slow them down and can fail them.
type countingStore struct {
	store.Store
	saves atomic.Int32
	delay time.Duration
	fail  atomic.Bool
}

func newCountingStore() *countingStore {
	return &countingStore{Store: store.NewMemory()}
}

func (c *countingStore) Save(ctx context.Context, key string, value interface{}) error {
	c.saves.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail.Load() {
		return stderrors.New("write failed")
	}
	return c.Store.Save(ctx, key, value)
}

// auditRecorder is an AuditSink that keeps every event.
type auditRecorder struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (r *auditRecorder) Publish(ev AuditEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *auditRecorder) kinds() []AuditKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AuditKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestEngine(s store.Store, gw *fakeGateway) (*Engine, *auditRecorder) {
	e := NewEngine(Config{
		WarningLimit:   3,
		NoticeDuration: 10 * time.Millisecond,
		ActionTimeout:  time.Second,
	}, s, gw, nil)
	rec := &auditRecorder{}
	e.Actuator().AddSink(rec)
	return e, rec
}
