package mqtt

import (
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
)

const defaultAuditBuffer = 256

// AuditPublisher forwards audit events to "<prefix>/audit/<guildId>/<kind>".
// Publish never blocks: when the buffer is full the event is dropped.
type AuditPublisher struct {
	mc     *Communicator
	events chan moderation.AuditEvent
	wg     sync.WaitGroup

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewAuditPublisher starts a publisher with room for buffer pending events
func NewAuditPublisher(mc *Communicator, buffer int) *AuditPublisher {
	if buffer <= 0 {
		buffer = defaultAuditBuffer
	}
	p := &AuditPublisher{
		mc:     mc,
		events: make(chan moderation.AuditEvent, buffer),
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// Publish queues ev for the broker
func (p *AuditPublisher) Publish(ev moderation.AuditEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}

	select {
	case p.events <- ev:
	default:
		logger.Warn(fmt.Sprintf("Cola de auditoría MQTT llena, evento %s descartado", ev.Kind), "MQTT")
	}
}

func (p *AuditPublisher) loop() {
	defer p.wg.Done()
	for ev := range p.events {
		guild := ev.GuildID
		if guild == "" {
			guild = "global"
		}
		if err := p.mc.Publish(p.mc.Topic("audit", guild, string(ev.Kind)), ev); err != nil {
			logger.Warn(fmt.Sprintf("No se pudo publicar el evento de auditoría: %v", err), "MQTT")
		}
	}
}

// Close flushes pending events and stops the publisher
func (p *AuditPublisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()
		p.wg.Wait()
	})
}
