package web

import (
	"context"
	"net/http"

	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BotStatus is what the status route reports about the gateway session
type BotStatus interface {
	IsReady() bool
	GuildCount() int
}

// LedgerReader is the read side of the warning ledger
type LedgerReader interface {
	CheckWarning(ctx context.Context, guildID, userID string) (count, remaining int, err error)
	ListWarnings(ctx context.Context, guildID string) ([]moderation.LedgerEntry, error)
}

// PolicyReader returns a guild's stored policy
type PolicyReader interface {
	Record(ctx context.Context, guildID string) (*models.PolicyRecord, error)
}

// Deps are the services behind the routes. Nil fields disable their routes.
type Deps struct {
	Bot      BotStatus
	DBStatus func() (string, bool)
	Ledger   LedgerReader
	Policies PolicyReader
	Feed     *AuditFeed
}

// SetupRoutes registers the API, metrics and audit feed routes
func SetupRoutes(s *Server, deps Deps) {
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/status", statusHandler(deps))
		api.GET("/health", healthHandler)
	}

	if s.apiToken == "" {
		return
	}

	guilds := api.Group("/guilds/:guildId", s.authMiddleware())
	if deps.Policies != nil {
		guilds.GET("/policy", policyHandler(deps.Policies))
	}
	if deps.Ledger != nil {
		guilds.GET("/warnings", warningsHandler(deps.Ledger))
		guilds.GET("/warnings/:userId", warningHandler(deps.Ledger))
	}

	if deps.Feed != nil {
		s.engine.GET("/ws/audit", s.authMiddleware(), deps.Feed.ServeWS)
	}
}

// statusHandler returns the bot and database status
func statusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus, dbOnline := "⚪ | No configurada", false
		if deps.DBStatus != nil {
			dbStatus, dbOnline = deps.DBStatus()
		}

		botOnline, guilds := false, 0
		if deps.Bot != nil {
			botOnline = deps.Bot.IsReady()
			guilds = deps.Bot.GuildCount()
		}

		feedClients := 0
		if deps.Feed != nil {
			feedClients = deps.Feed.Clients()
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"database": gin.H{
				"status":   dbStatus,
				"isOnline": dbOnline,
			},
			"bot": gin.H{
				"isOnline": botOnline,
				"guilds":   guilds,
			},
			"auditFeedClients": feedClients,
		})
	}
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyGuard is running",
	})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"message": "No se pudo leer el almacenamiento.",
		"status":  500,
	})
}

func policyHandler(policies PolicyReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := policies.Record(c.Request.Context(), c.Param("guildId"))
		if err != nil {
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func warningsHandler(ledger LedgerReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ledger.ListWarnings(c.Request.Context(), c.Param("guildId"))
		if err != nil {
			internalError(c)
			return
		}
		if entries == nil {
			entries = []moderation.LedgerEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"guildId": c.Param("guildId"), "warnings": entries})
	}
}

func warningHandler(ledger LedgerReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, remaining, err := ledger.CheckWarning(c.Request.Context(), c.Param("guildId"), c.Param("userId"))
		if err != nil {
			internalError(c)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"guildId":   c.Param("guildId"),
			"userId":    c.Param("userId"),
			"warnings":  count,
			"remaining": remaining,
		})
	}
}
