package mqtt

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type published struct {
	topic   string
	payload []byte
}

// memoryBroker delivers messages synchronously to matching subscriptions
type memoryBroker struct {
	mu        sync.Mutex
	subs      map[string]func(topic string, payload []byte)
	published []published
	failWith  error
}

func newMemoryBroker() *memoryBroker {
	return &memoryBroker{subs: make(map[string]func(string, []byte))}
}

func (b *memoryBroker) publish(topic string, payload []byte) error {
	b.mu.Lock()
	if b.failWith != nil {
		b.mu.Unlock()
		return b.failWith
	}
	b.published = append(b.published, published{topic: topic, payload: payload})
	var handlers []func(string, []byte)
	for pattern, h := range b.subs {
		if topicMatch(pattern, topic) {
			handlers = append(handlers, h)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return nil
}

func (b *memoryBroker) subscribe(topic string, handler func(string, []byte)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = handler
	return nil
}

func (b *memoryBroker) unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, topic)
	return nil
}

func (b *memoryBroker) connected() bool { return true }
func (b *memoryBroker) close()          {}

func (b *memoryBroker) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.published))
	for _, p := range b.published {
		out = append(out, p.topic)
	}
	return out
}

type fakeLedger struct {
	counts map[string]int
	limit  int
	err    error
}

func (f *fakeLedger) CheckWarning(_ context.Context, guildID, userID string) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	count := f.counts[guildID+":"+userID]
	return count, f.limit - count, nil
}

func (f *fakeLedger) ListWarnings(_ context.Context, guildID string) ([]moderation.LedgerEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []moderation.LedgerEntry
	for key, n := range f.counts {
		if len(key) > len(guildID) && key[:len(guildID)+1] == guildID+":" {
			out = append(out, moderation.LedgerEntry{UserID: key[len(guildID)+1:], Warnings: n})
		}
	}
	return out, nil
}

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"ledger/check", "ledger/check", true},
		{"ledger/check", "ledger/list", false},
		{"ledger/+", "ledger/list", true},
		{"ledger/+", "ledger/list/extra", false},
		{"ledger/#", "ledger", true},
		{"ledger/#", "ledger/a/b", true},
		{"pancyguard/response/ledger/check/id", "pancyguard/response/ledger/check", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"→"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicMatch(tt.pattern, tt.topic))
		})
	}
}

func TestTopic(t *testing.T) {
	mc := newCommunicator(newMemoryBroker(), "guard/", 0)
	assert.Equal(t, "guard/audit/g1/ban", mc.Topic("audit", "g1", "ban"))

	mc = newCommunicator(newMemoryBroker(), "", 0)
	assert.Equal(t, "pancyguard/request/ledger/check", mc.Topic("request", "ledger/check"))
}

func TestLedgerCheck(t *testing.T) {
	mc := newCommunicator(newMemoryBroker(), "pancyguard", time.Second)
	require.NoError(t, RegisterLedgerHandlers(mc, &fakeLedger{counts: map[string]int{"g1:u1": 2}, limit: 3}))

	raw, err := mc.Request(context.Background(), "ledger/check", LedgerQuery{GuildID: "g1", UserID: "u1"})
	require.NoError(t, err)

	var status WarningStatus
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.Equal(t, WarningStatus{GuildID: "g1", UserID: "u1", Warnings: 2, Remaining: 1}, status)
}

func TestLedgerList(t *testing.T) {
	mc := newCommunicator(newMemoryBroker(), "pancyguard", time.Second)
	require.NoError(t, RegisterLedgerHandlers(mc, &fakeLedger{counts: map[string]int{"g1:u1": 2, "g2:u9": 1}, limit: 3}))

	raw, err := mc.Request(context.Background(), "ledger/list", LedgerQuery{GuildID: "g1"})
	require.NoError(t, err)

	var entries []moderation.LedgerEntry
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Equal(t, []moderation.LedgerEntry{{UserID: "u1", Warnings: 2}}, entries)
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload interface{}
		ledger  *fakeLedger
		want    string
	}{
		{"missing guild", "ledger/check", LedgerQuery{UserID: "u1"}, &fakeLedger{}, "Falta guildId."},
		{"missing user", "ledger/check", LedgerQuery{GuildID: "g1"}, &fakeLedger{}, "Falta userId."},
		{"bad payload", "ledger/list", "no-es-un-objeto", &fakeLedger{}, "Payload inválido."},
		{"store failure", "ledger/list", LedgerQuery{GuildID: "g1"}, &fakeLedger{err: fmt.Errorf("disk full")}, "Ocurrió un error interno, intenta de nuevo más tarde."},
		{"unknown topic", "ledger/nope", LedgerQuery{GuildID: "g1"}, &fakeLedger{}, "sin handler para 'ledger/nope'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mc := newCommunicator(newMemoryBroker(), "pancyguard", time.Second)
			require.NoError(t, RegisterLedgerHandlers(mc, tt.ledger))

			_, err := mc.Request(context.Background(), tt.topic, tt.payload)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	broker := newMemoryBroker()
	mc := newCommunicator(broker, "pancyguard", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mc.Request(ctx, "ledger/check", LedgerQuery{GuildID: "g1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expirado")

	broker.mu.Lock()
	defer broker.mu.Unlock()
	assert.Empty(t, broker.subs, "the response subscription is dropped")
}

func TestDispatchIgnoresRequestsWithoutCorrelationID(t *testing.T) {
	broker := newMemoryBroker()
	mc := newCommunicator(broker, "pancyguard", time.Second)
	require.NoError(t, RegisterLedgerHandlers(mc, &fakeLedger{}))

	require.NoError(t, broker.publish("pancyguard/request/ledger/list", []byte(`{"payload":{"guildId":"g1"}}`)))
	assert.Equal(t, []string{"pancyguard/request/ledger/list"}, broker.topics())
}

func TestDispatchRecoversFromHandlerPanic(t *testing.T) {
	broker := newMemoryBroker()
	mc := newCommunicator(broker, "pancyguard", time.Second)
	require.NoError(t, mc.On("boom", func(context.Context, string, json.RawMessage) (interface{}, error) {
		panic("kaboom")
	}))

	assert.NotPanics(t, func() {
		_ = broker.publish("pancyguard/request/boom", []byte(`{"correlationId":"c1"}`))
	})
}

func TestAuditPublisher(t *testing.T) {
	broker := newMemoryBroker()
	mc := newCommunicator(broker, "pancyguard", time.Second)
	p := NewAuditPublisher(mc, 8)

	p.Publish(moderation.AuditEvent{GuildID: "g1", Kind: moderation.AuditWarning, UserID: "u1", Text: "⚠️"})
	p.Publish(moderation.AuditEvent{Kind: moderation.AuditActionFailed, Text: "x"})
	p.Close()
	p.Publish(moderation.AuditEvent{GuildID: "g1", Kind: moderation.AuditBan})
	p.Close()

	assert.Equal(t, []string{
		"pancyguard/audit/g1/warning",
		"pancyguard/audit/global/action_failed",
	}, broker.topics())

	var ev moderation.AuditEvent
	require.NoError(t, json.Unmarshal(broker.published[0].payload, &ev))
	assert.Equal(t, "u1", ev.UserID)
}

func TestAuditPublisherDropsWhenFull(t *testing.T) {
	broker := newMemoryBroker()
	broker.failWith = errors.Validation("broker", "caído")
	mc := newCommunicator(broker, "pancyguard", time.Second)
	p := NewAuditPublisher(mc, 1)
	defer p.Close()

	assert.NotPanics(t, func() {
		for i := 0; i < 50; i++ {
			p.Publish(moderation.AuditEvent{GuildID: "g1", Kind: moderation.AuditWarning})
		}
	})
}
