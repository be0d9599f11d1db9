package logger

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger(Options{})
	require.NotNil(t, l)
	l.logrus.SetOutput(io.Discard)

	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")
	l.Critical("Test critical message", "TEST")

	l.Close()
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestLineFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Message: "hola",
		Data:    logrus.Fields{fieldLevel: LevelSuccess, fieldPrefix: "DB"},
	}

	out, err := (&lineFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 10:30:00] [SUCCESS] [DB]: hola\n", string(out))

	colored, err := (&lineFormatter{colors: true}).Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(colored), LevelSuccess.Color())
}

func TestLogFileCreation(t *testing.T) {
	logsDir := filepath.Join(t.TempDir(), "logs")

	l := NewLogger(Options{LogsDir: logsDir})
	l.logrus.SetOutput(io.Discard)

	l.Info("linea normal", "TEST")
	l.Error("linea de error", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(logsDir, "combined.log"))
	require.NoError(t, err)
	assert.Contains(t, string(combined), "linea normal")
	assert.Contains(t, string(combined), "linea de error")

	errorLog, err := os.ReadFile(filepath.Join(logsDir, "error.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(errorLog), "linea normal")
	assert.Contains(t, string(errorLog), "linea de error")
}

func TestLevelFiltering(t *testing.T) {
	logsDir := t.TempDir()

	l := NewLogger(Options{LogsDir: logsDir, Level: "warn"})
	l.logrus.SetOutput(io.Discard)

	l.Debug("oculto", "TEST")
	l.Warn("visible", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(logsDir, "combined.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(combined), "oculto")
	assert.Contains(t, string(combined), "visible")
}

func TestWebhookRouting(t *testing.T) {
	var (
		mu     sync.Mutex
		titles = map[string][]string{}
		got    = make(chan struct{}, 4)
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Embeds []struct {
				Title string `json:"title"`
			} `json:"embeds"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		for _, e := range payload.Embeds {
			titles[r.URL.Path] = append(titles[r.URL.Path], e.Title)
		}
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
		got <- struct{}{}
	}))
	defer server.Close()

	l := NewLogger(Options{ErrorWebhook: server.URL + "/errors", LogsWebhook: server.URL + "/logs"})
	l.logrus.SetOutput(io.Discard)

	l.Error("fallo", "DB")
	l.Info("todo bien", "WEB")

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(5 * time.Second):
			t.Fatal("webhook was not called")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, titles["/errors"], 1)
	require.Len(t, titles["/logs"], 1)
	assert.True(t, strings.HasPrefix(titles["/errors"][0], "[ERROR] DB"))
	assert.True(t, strings.HasPrefix(titles["/logs"][0], "[INFO] WEB"))
}

func TestGlobalLoggerInit(t *testing.T) {
	logger = nil
	once = sync.Once{}

	l := Init(Options{})
	require.NotNil(t, l)

	l2 := Init(Options{LogsWebhook: "different"})
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	if l3 := Get(); l != l3 {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
}
