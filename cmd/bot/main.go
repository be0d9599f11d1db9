// Package main is the entry point for PancyGuard.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyGuard/internal/commands"
	"github.com/PancyStudios/PancyGuard/internal/events"
	"github.com/PancyStudios/PancyGuard/internal/storage"
	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/PancyStudios/PancyGuard/pkg/moderation"
	"github.com/PancyStudios/PancyGuard/pkg/mqtt"
	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/PancyStudios/PancyGuard/pkg/web"
)

// shutdownTimeout bounds how long pending enforcement and HTTP requests
// may take once a signal arrives.
const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(logger.Options{
		ErrorWebhook: cfg.ErrorWebhook,
		LogsWebhook:  cfg.LogsWebhook,
		LogsDir:      cfg.LogsDir,
		Level:        cfg.LogLevel,
	})
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyGuard %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errHandler := errors.Init(errors.Options{
		WebhookURL: cfg.ErrorWebhook,
		OnShutdown: func() {
			if discordClient != nil {
				if err := discordClient.Stop(); err != nil {
					logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
				}
			}
		},
	})
	defer errHandler.Stop()

	// Storage
	backend, err := storage.Open(cfg.StoreBackend, cfg.DataDir, cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error abriendo el almacenamiento: %v", err), "Main")
		os.Exit(1)
	}
	defer backend.Close()

	// Initialize Discord client
	discordClient, err = discord.NewClient(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// The gateway resolves log channels through the engine it serves.
	var engine *moderation.Engine
	gateway := discord.NewGateway(discordClient.Session, func(ctx context.Context, guildID string) (string, error) {
		return engine.LogChannels().Get(ctx, guildID)
	})

	roles := reactionrole.NewMapper(backend.Store, gateway)
	engine = moderation.NewEngine(moderation.Config{
		WarningLimit:   cfg.WarningLimit,
		NoticeDuration: time.Duration(cfg.NoticeSeconds) * time.Second,
		ActionTimeout:  time.Duration(cfg.ActionTimeoutSeconds) * time.Second,
		Defaults: moderation.PolicyDefaults{
			InviteAllowlist:   cfg.InviteAllowlist,
			BlockedExtensions: cfg.BlockedExtensions,
		},
	}, backend.Store, gateway, roles)

	// Initialize MQTT
	if cfg.MQTTHost != "" {
		mqttClientID := "pancyguard"
		if !cfg.IsProd() {
			mqttClientID = "pancyguard_canary"
		}

		mqttClient := mqtt.New(mqtt.Options{
			Host:     cfg.MQTTHost,
			Port:     cfg.MQTTPort,
			Username: cfg.MQTTUser,
			Password: cfg.MQTTPassword,
			ClientID: mqttClientID,
			Prefix:   cfg.MQTTTopicPrefix,
		})
		defer mqttClient.Destroy()

		publisher := mqtt.NewAuditPublisher(mqttClient, 0)
		defer publisher.Close()
		engine.Actuator().AddSink(publisher)

		if err := mqtt.RegisterLedgerHandlers(mqttClient, engine); err != nil {
			logger.Error(fmt.Sprintf("Error registrando consultas MQTT: %v", err), "Main")
		}
	}

	// Initialize web server
	webServer, err := web.NewServer(web.Options{
		WebhookURL:        cfg.LogsWebServerHook,
		AllowedHosts:      cfg.WebAllowedHosts,
		APIToken:          cfg.WebAPIToken,
		RequestsPerMinute: cfg.WebRateLimit,
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando el servidor web: %v", err), "Main")
		os.Exit(1)
	}
	feed := web.NewAuditFeed()
	engine.Actuator().AddSink(feed)
	web.SetupRoutes(webServer, web.Deps{
		Bot:      discordClient,
		DBStatus: backend.Status(),
		Ledger:   engine,
		Policies: engine.Policies(),
		Feed:     feed,
	})
	webServer.StartAsync(cfg.Port)

	// Register commands and events
	commands.RegisterAll(discordClient, commands.Deps{
		Engine:       engine,
		Roles:        roles,
		StoreBackend: backend.Name,
		DBStatus:     backend.Status(),
	})
	events.RegisterAll(discordClient, engine)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("PancyGuard iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyGuard...", "Main")

	if err := discordClient.Stop(); err != nil {
		logger.Error(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := webServer.Shutdown(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
	}
	feed.Close()

	done := make(chan struct{})
	go func() {
		engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("Quedaron acciones de moderación pendientes al apagar", "Main")
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
