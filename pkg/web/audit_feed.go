package web

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	feedBuffer    = 64
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 50 * time.Second
	maxReadLength = 512
)

type feedClient struct {
	guildID string
	send    chan moderation.AuditEvent
}

// AuditFeed streams audit events to websocket clients. A client may narrow
// the stream with ?guildId=. Clients that fall behind are disconnected.
type AuditFeed struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	closed  bool
	wg      sync.WaitGroup
}

// NewAuditFeed returns an empty feed
func NewAuditFeed() *AuditFeed {
	return &AuditFeed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 10,
			WriteBufferSize: 1 << 12,
			CheckOrigin:     allowAnyOrigin,
		},
		clients: make(map[*feedClient]struct{}),
	}
}

// Publish implements moderation.AuditSink
func (f *AuditFeed) Publish(ev moderation.AuditEvent) {
	var slow []*feedClient

	f.mu.RLock()
	for c := range f.clients {
		if c.guildID != "" && c.guildID != ev.GuildID {
			continue
		}
		select {
		case c.send <- ev:
		default:
			slow = append(slow, c)
		}
	}
	f.mu.RUnlock()

	for _, c := range slow {
		logger.Warn("Cliente del feed de auditoría demasiado lento, desconectado", "WebServer")
		f.remove(c)
	}
}

// Clients returns the number of connected clients
func (f *AuditFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *AuditFeed) add(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	return true
}

// remove closes the client's channel once; its writer then hangs up
func (f *AuditFeed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		close(c.send)
	}
}

// Close disconnects every client and waits for their goroutines
func (f *AuditFeed) Close() {
	f.mu.Lock()
	f.closed = true
	for c := range f.clients {
		delete(f.clients, c)
		close(c.send)
	}
	f.mu.Unlock()
	f.wg.Wait()
}

// ServeWS upgrades the request and streams events until either side hangs up
func (f *AuditFeed) ServeWS(c *gin.Context) {
	conn, err := f.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn(fmt.Sprintf("upgrading websocket: %v", err), "WebServer")
		return
	}

	client := &feedClient{
		guildID: c.Query("guildId"),
		send:    make(chan moderation.AuditEvent, feedBuffer),
	}
	if !f.add(client) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		conn.Close()
		return
	}

	f.wg.Add(2)
	go f.readLoop(conn, client)
	go f.writeLoop(conn, client)
}

// readLoop discards client input and notices when the peer goes away
func (f *AuditFeed) readLoop(conn *websocket.Conn, c *feedClient) {
	defer f.wg.Done()
	defer f.remove(c)

	conn.SetReadLimit(maxReadLength)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *AuditFeed) writeLoop(conn *websocket.Conn, c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		f.wg.Done()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				f.remove(c)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				f.remove(c)
				return
			}
		}
	}
}

// allowAnyOrigin lets dashboards on other origins connect. The feed is
// token protected and the Host header was already checked.
func allowAnyOrigin(*http.Request) bool { return true }
