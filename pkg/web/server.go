// Package web provides the operator HTTP API, the Prometheus endpoint and
// the live audit feed. It uses Gin for routing and middleware.
package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Options configures the server
type Options struct {
	// WebhookURL receives a copy of every request log. Empty disables it.
	WebhookURL string
	// AllowedHosts is a regular expression the Host header must match.
	// Empty allows every host.
	AllowedHosts string
	// APIToken protects the guild routes and the audit feed. Empty leaves
	// them unregistered.
	APIToken string
	// RequestsPerMinute is the per-IP budget.
	RequestsPerMinute int
}

// Server represents the web server
type Server struct {
	engine           *gin.Engine
	mu               sync.Mutex
	http             *http.Server
	webhookURL       string
	apiToken         string
	allowedHostRegex *regexp.Regexp
	limiter          *ipLimiter
}

// NewServer creates a new web server
func NewServer(opts Options) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:     engine,
		webhookURL: opts.WebhookURL,
		apiToken:   opts.APIToken,
	}

	if opts.AllowedHosts != "" {
		re, err := regexp.Compile(opts.AllowedHosts)
		if err != nil {
			return nil, fmt.Errorf("webAllowedHosts inválido: %w", err)
		}
		s.allowedHostRegex = re
	}

	limiter, err := newIPLimiter(opts.RequestsPerMinute, maxTrackedClients)
	if err != nil {
		return nil, err
	}
	s.limiter = limiter

	// Apply middlewares
	s.engine.Use(s.logsMiddleware())
	s.engine.Use(s.rateLimitMiddleware())

	s.setupErrorHandlers()

	return s, nil
}

// Engine returns the underlying Gin engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// logsMiddleware logs every request and rejects unknown hosts
func (s *Server) logsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.allowedHostRegex == nil || s.allowedHostRegex.MatchString(c.Request.Host) {
			logger.Debug(fmt.Sprintf("[LOG] Nueva solicitud: %s %s", c.Request.Method, c.Request.URL.Path), "WebServer")
			s.forward(c, false)
			c.Next()
			return
		}

		logger.Warn(fmt.Sprintf("[LOG] Solicitud Sospechosa: %s %s | %s", c.Request.Method, c.Request.URL.Path, c.ClientIP()), "WebServer")
		s.forward(c, true)
		c.AbortWithStatus(http.StatusForbidden)
	}
}

// requestLog is copied out of the gin context before it is recycled
type requestLog struct {
	method  string
	path    string
	ip      string
	headers http.Header
	query   string
}

// forward copies the request to the webhook in the background. Credentials
// are stripped first.
func (s *Server) forward(c *gin.Context, suspicious bool) {
	if s.webhookURL == "" {
		return
	}

	headers := c.Request.Header.Clone()
	headers.Del("Authorization")
	query := c.Request.URL.Query()
	query.Del("token")

	go s.sendLogToWebhook(requestLog{
		method:  c.Request.Method,
		path:    c.Request.URL.Path,
		ip:      c.ClientIP(),
		headers: headers,
		query:   query.Encode(),
	}, suspicious)
}

// sendLogToWebhook sends a log message to the Discord webhook
func (s *Server) sendLogToWebhook(entry requestLog, suspicious bool) {
	title := fmt.Sprintf("💫 | Nueva solicitud al servidor web de tipo %s", entry.method)
	color := 0x00AE86 // Green

	if suspicious {
		title = fmt.Sprintf("💫 | Solicitud Sospechosa Rechazada: %s %s", entry.method, entry.path)
		color = 0xFFA500 // Orange
	}

	headers, _ := json.Marshal(entry.headers)
	query := entry.query
	if query == "" {
		query = "{}"
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{map[string]interface{}{
			"title": title,
			"description": fmt.Sprintf(
				"> **Ruta:** `%s`\n> **IP:** `%s`\n> **Headers:** ```%s``` \n> **Query:** ```%s```",
				entry.path, entry.ip, string(headers), query,
			),
			"color":     color,
			"timestamp": time.Now().Format(time.RFC3339),
		}},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post(s.webhookURL, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return
	}
	resp.Body.Close()
}

const maxTrackedClients = 4096

// ipLimiter keeps one token bucket per client IP. The least recently seen
// IPs are forgotten once maxTrackedClients is reached.
type ipLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newIPLimiter(perMinute, size int) (*ipLimiter, error) {
	if perMinute <= 0 {
		perMinute = 100
	}
	cache, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &ipLimiter{
		limiters: cache,
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
	}, nil
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters.Get(ip)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters.Add(ip, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

// rateLimitMiddleware rejects clients over their per-minute budget
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes, por favor intente de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}

// authMiddleware checks the API token from the Authorization header or,
// for browser websockets, the token query parameter.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Token inválido o ausente.",
				"status":  401,
			})
			return
		}
		c.Next()
	}
}

// setupErrorHandlers sets up error handling routes
func (s *Server) setupErrorHandlers() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "La ruta solicitada no existe.",
			"status":  404,
		})
	})

	s.engine.HandleMethodNotAllowed = true
	s.engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error":   "Method Not Allowed",
			"message": "El método HTTP no está permitido para esta ruta.",
			"status":  405,
		})
	})
}

// Start serves until Shutdown is called
func (s *Server) Start(port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	logger.Info(fmt.Sprintf("🚀 Servidor escuchando en http://localhost:%s", port), "WebServer")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync(port string) {
	go func() {
		if err := s.Start(port); err != nil {
			logger.Error(fmt.Sprintf("Error starting web server: %v", err), "WebServer")
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
