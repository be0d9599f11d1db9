// Package errors holds the error taxonomy shared by the engine and the
// operator surfaces, plus the anti-crash guard: panics recovered from event
// handlers and enforcement tasks are counted, and a burst of them shuts the
// bot down instead of letting it keep moderating in a broken state.
package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/goccy/go-json"
)

// Options configures an ErrorHandler.
type Options struct {
	// WebhookURL receives the shutdown report. Empty disables it.
	WebhookURL string
	// MaxErrors is how many errors one Window tolerates. Defaults to 15.
	MaxErrors int32
	// Window is how often the count starts over. Defaults to 5s.
	Window time.Duration
	// OnShutdown runs before the process exits, e.g. to close the gateway.
	OnShutdown func()
}

// ErrorHandler counts recovered errors per window and exits the process
// once a window goes over budget.
type ErrorHandler struct {
	opts    Options
	count   atomic.Int32
	tripped atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
	exit     func(code int)
	client   *http.Client
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init installs the global handler used by RecoverMiddleware
func Init(opts Options) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(opts)
	})
	return handler
}

// Get returns the global handler, nil before Init
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler starts a handler; Stop releases its window ticker.
func NewErrorHandler(opts Options) *ErrorHandler {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = 15
	}
	if opts.Window <= 0 {
		opts.Window = 5 * time.Second
	}

	h := &ErrorHandler{
		opts:   opts,
		stop:   make(chan struct{}),
		exit:   os.Exit,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	go h.windowLoop()
	return h
}

func (h *ErrorHandler) windowLoop() {
	ticker := time.NewTicker(h.opts.Window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.count.Store(0)
		case <-h.stop:
			return
		}
	}
}

// Stop ends the window loop. Safe to call more than once.
func (h *ErrorHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// IncrementError counts one error. The first error over budget starts the
// shutdown; later ones only count.
func (h *ErrorHandler) IncrementError() {
	n := h.count.Add(1)
	logger.Error(fmt.Sprintf("Errores en la ventana actual: %d/%d", n, h.opts.MaxErrors), "AntiCrash")

	if n > h.opts.MaxErrors && h.tripped.CompareAndSwap(false, true) {
		go h.shutdown()
	}
}

// Count returns the errors seen in the current window
func (h *ErrorHandler) Count() int32 {
	return h.count.Load()
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Critical("Se detectó un número demasiado alto de errores, apagando...", "AntiCrash")

	h.Report("Critical Error", "Número inusual de errores. Apagando...")

	if h.opts.OnShutdown != nil {
		h.opts.OnShutdown()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "AntiCrash")
	h.exit(1)
}

// HandlePanic counts and logs a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	logger.Error(fmt.Sprintf("Panic recuperado: %v", recovered), "AntiCrash")
	h.IncrementError()
}

type reportEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Footer      reportFooter `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type reportFooter struct {
	Text string `json:"text"`
}

// Report posts an error embed to the webhook, if one is configured
func (h *ErrorHandler) Report(title, message string) {
	if h.opts.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(map[string][]reportEmbed{
		"embeds": {{
			Title:       "Error " + title,
			Description: message,
			Color:       0xFF0000,
			Footer:      reportFooter{Text: "PancyGuard"},
			Timestamp:   time.Now().Format(time.RFC3339),
		}},
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Error serializando el reporte: %v", err), "AntiCrash")
		return
	}

	resp, err := h.client.Post(h.opts.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Error(fmt.Sprintf("Error enviando el reporte: %v", err), "AntiCrash")
		return
	}
	resp.Body.Close()

	logger.Warn(fmt.Sprintf("Reporte de error enviado, estado: %d", resp.StatusCode), "AntiCrash")
}

func recovered(r interface{}) {
	if handler != nil {
		handler.HandlePanic(r)
		return
	}
	logger.Error(fmt.Sprintf("Panic recuperado (sin handler): %v", r), "AntiCrash")
}

// RecoverMiddleware returns a recovery function for deferred calls:
//
//	defer errors.RecoverMiddleware()()
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			recovered(r)
		}
	}
}

// RecoverWith is RecoverMiddleware plus a callback that sees the recovered
// value, for background tasks that must surface their failure.
func RecoverWith(onPanic func(recovered interface{})) func() {
	return func() {
		if r := recover(); r != nil {
			recovered(r)
			if onPanic != nil {
				onPanic(r)
			}
		}
	}
}
