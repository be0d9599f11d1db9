// Package mqtt publishes moderation audit events to a broker and answers
// ledger queries over a request/response topic pair.
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Request is the envelope of every RPC call
type Request struct {
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Response answers a Request with the same correlation id
type Response struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// rawResponse is a Response whose data is still undecoded
type rawResponse struct {
	CorrelationID string          `json:"correlationId"`
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error,omitempty"`
}

// RequestHandler answers one request. topic is the request topic without
// the "<prefix>/request/" part.
type RequestHandler func(ctx context.Context, topic string, payload json.RawMessage) (interface{}, error)

// transport is the subset of a broker client the communicator needs
type transport interface {
	publish(topic string, payload []byte) error
	subscribe(topic string, handler func(topic string, payload []byte)) error
	unsubscribe(topic string) error
	connected() bool
	close()
}

type route struct {
	pattern string
	handler RequestHandler
}

// Options configures the broker connection
type Options struct {
	Host     string
	Port     string
	Username string
	Password string
	ClientID string
	// Prefix is the root of every topic, e.g. "pancyguard".
	Prefix string
	// HandlerTimeout bounds each RequestHandler call.
	HandlerTimeout time.Duration
}

// Communicator handles MQTT communication
type Communicator struct {
	tr      transport
	prefix  string
	timeout time.Duration

	mu         sync.RWMutex
	routes     []route
	subscribed bool
}

// New connects to the broker described by opts. The connection keeps
// retrying in the background when the broker is down.
func New(opts Options) *Communicator {
	uniqueID := fmt.Sprintf("%s_%s", opts.ClientID, uuid.New().String())

	clientOpts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", opts.Host, opts.Port)).
		SetClientID(uniqueID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(c paho.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", opts.ClientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c paho.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}

	return newCommunicator(&pahoTransport{client: client}, opts.Prefix, opts.HandlerTimeout)
}

func newCommunicator(tr transport, prefix string, timeout time.Duration) *Communicator {
	if prefix == "" {
		prefix = "pancyguard"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Communicator{tr: tr, prefix: strings.TrimSuffix(prefix, "/"), timeout: timeout}
}

// Topic joins parts under the communicator's prefix
func (mc *Communicator) Topic(parts ...string) string {
	return mc.prefix + "/" + strings.Join(parts, "/")
}

// Destroy closes the MQTT connection
func (mc *Communicator) Destroy() {
	if mc.tr.connected() {
		mc.tr.close()
		logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
	} else {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *Communicator) IsConnected() bool {
	return mc.tr.connected()
}

// Publish sends payload as JSON to a topic
func (mc *Communicator) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return mc.tr.publish(topic, data)
}

// Request sends a request and waits for its response
func (mc *Communicator) Request(ctx context.Context, topic string, payload interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	correlationID := uuid.New().String()
	responseTopic := mc.Topic("response", topic, correlationID)

	responses := make(chan rawResponse, 1)
	err = mc.tr.subscribe(responseTopic, func(_ string, body []byte) {
		var resp rawResponse
		if err := json.Unmarshal(body, &resp); err != nil || resp.CorrelationID != correlationID {
			return
		}
		select {
		case responses <- resp:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = mc.tr.unsubscribe(responseTopic)
	}()

	if err := mc.Publish(mc.Topic("request", topic), Request{CorrelationID: correlationID, Payload: raw}); err != nil {
		return nil, err
	}

	select {
	case resp := <-responses:
		if resp.Error != "" {
			return nil, fmt.Errorf("%s", resp.Error)
		}
		return resp.Data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("la petición a '%s' ha expirado (timeout)", topic)
	}
}

// On registers a handler for request topics matching pattern. Patterns may
// use the '+' and '#' wildcards.
func (mc *Communicator) On(pattern string, handler RequestHandler) error {
	mc.mu.Lock()
	mc.routes = append(mc.routes, route{pattern: pattern, handler: handler})
	first := !mc.subscribed
	mc.subscribed = true
	mc.mu.Unlock()

	if !first {
		return nil
	}

	topic := mc.Topic("request", "#")
	if err := mc.tr.subscribe(topic, mc.dispatch); err != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, err), "MQTT")
		return err
	}
	return nil
}

// dispatch answers one incoming request with the first matching route
func (mc *Communicator) dispatch(topic string, body []byte) {
	defer errors.RecoverMiddleware()()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return
	}
	if req.CorrelationID == "" {
		logger.Warn("Petición MQTT sin correlationId en "+topic, "MQTT")
		return
	}

	actual := strings.TrimPrefix(topic, mc.Topic("request")+"/")

	mc.mu.RLock()
	var handler RequestHandler
	for _, r := range mc.routes {
		if topicMatch(r.pattern, actual) {
			handler = r.handler
			break
		}
	}
	mc.mu.RUnlock()

	resp := Response{CorrelationID: req.CorrelationID}
	if handler == nil {
		resp.Error = fmt.Sprintf("sin handler para '%s'", actual)
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), mc.timeout)
		data, err := handler(ctx, actual, req.Payload)
		cancel()
		if err != nil {
			resp.Error = errors.UserMessage(err)
		} else {
			resp.Data = data
		}
	}

	if err := mc.Publish(mc.Topic("response", actual, req.CorrelationID), resp); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo responder a %s: %v", actual, err), "MQTT")
	}
}

// topicMatch checks if a received topic matches a pattern (with wildcards)
// '+' matches exactly one topic level
// '#' matches zero or more topic levels and must be the last character
func topicMatch(pattern, topic string) bool {
	patternParts := strings.Split(pattern, "/")
	topicParts := strings.Split(topic, "/")

	for i, part := range patternParts {
		if part == "#" {
			return true
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}
	return len(patternParts) == len(topicParts)
}

// pahoTransport adapts a paho client
type pahoTransport struct {
	client paho.Client
}

func (t *pahoTransport) publish(topic string, payload []byte) error {
	token := t.client.Publish(topic, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (t *pahoTransport) subscribe(topic string, handler func(topic string, payload []byte)) error {
	token := t.client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

func (t *pahoTransport) unsubscribe(topic string) error {
	token := t.client.Unsubscribe(topic)
	token.Wait()
	return token.Error()
}

func (t *pahoTransport) connected() bool {
	return t.client != nil && t.client.IsConnected()
}

func (t *pahoTransport) close() {
	t.client.Disconnect(250)
}
