package logger

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// lineFormatter renders "[time] [LEVEL] [prefix]: message".
type lineFormatter struct {
	colors bool
}

func entryLevel(entry *logrus.Entry) LogLevel {
	if lvl, ok := entry.Data[fieldLevel].(LogLevel); ok {
		return lvl
	}
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func entryPrefix(entry *logrus.Entry) string {
	if prefix, ok := entry.Data[fieldPrefix].(string); ok && prefix != "" {
		return prefix
	}
	return "SYS"
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := entryLevel(entry)
	label := level.String()
	if f.colors {
		label = level.Color() + label + colorReset
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s] [%s] [%s]: %s\n",
		entry.Time.Format("2006-01-02 15:04:05"),
		label,
		entryPrefix(entry),
		entry.Message,
	)
	return buf.Bytes(), nil
}

// fileHook appends every entry to combined.log and errors to error.log.
type fileHook struct {
	mu        sync.Mutex
	formatter logrus.Formatter
	combined  *os.File
	errors    *os.File
}

func newFileHook(dir string) (*fileHook, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	combined, err := os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	errorsFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		combined.Close()
		return nil, err
	}

	return &fileHook{
		formatter: &lineFormatter{},
		combined:  combined,
		errors:    errorsFile,
	}, nil
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.combined.Write(line); err != nil {
		return err
	}
	if entryLevel(entry) <= LevelError {
		if _, err := h.errors.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (h *fileHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.combined.Close()
	h.errors.Close()
}

// webhookHook mirrors entries to Discord webhooks as embeds.
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *http.Client
}

func newWebhookHook(errorURL, logsURL string) *webhookHook {
	return &webhookHook{
		errorURL: errorURL,
		logsURL:  logsURL,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) target(level LogLevel) string {
	if level <= LevelError {
		return h.errorURL
	}
	return h.logsURL
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := entryLevel(entry)
	url := h.target(level)
	if url == "" {
		return nil
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"title":       fmt.Sprintf("[%s] %s", level.String(), entryPrefix(entry)),
				"description": fmt.Sprintf("```%s```", entry.Message),
				"color":       level.DiscordColor(),
				"timestamp":   entry.Time.Format(time.RFC3339),
				"footer": map[string]string{
					"text": "💫 Developed by PancyStudio | PancyGuard",
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	go h.send(url, body)
	return nil
}

func (h *webhookHook) send(url string, body []byte) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
