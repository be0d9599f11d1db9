// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Storage
	StoreBackend string // "file", "mongo" or "memory"
	DataDir      string
	MongoDBURL   string
	DBName       string

	// Moderation
	WarningLimit         int
	NoticeSeconds        int
	ActionTimeoutSeconds int
	BlockedExtensions    []string
	InviteAllowlist      []string

	// MQTT (empty host disables it)
	MQTTHost        string
	MQTTPort        string
	MQTTUser        string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Web Server
	Port            string
	WebAllowedHosts string
	WebAPIToken     string
	WebRateLimit    int // requests per minute per IP

	// Environment
	Environment string

	// Logging
	LogLevel string
	LogsDir  string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// DefaultWarningLimit is the warning count at which an automatic ban fires.
const DefaultWarningLimit = 3

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// Storage
		StoreBackend: strings.ToLower(getEnv("storeBackend", "file")),
		DataDir:      getEnv("dataDir", "./data"),
		MongoDBURL:   getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:       getEnv("dbName", "PancyGuard"),

		// Moderation
		WarningLimit:         getEnvInt("warningLimit", DefaultWarningLimit),
		NoticeSeconds:        getEnvInt("noticeSeconds", 5),
		ActionTimeoutSeconds: getEnvInt("actionTimeoutSeconds", 10),
		BlockedExtensions:    getEnvList("blockedExtensions", "exe,bat,cmd,com,scr,msi,jar,vbs,ps1,zip,rar,7z"),
		InviteAllowlist:      getEnvList("inviteAllowlist", ""),

		// MQTT
		MQTTHost:        getEnv("MQTT_Host", ""),
		MQTTPort:        getEnv("MQTT_Port", "1883"),
		MQTTUser:        getEnv("MQTT_User", ""),
		MQTTPassword:    getEnv("MQTT_Password", ""),
		MQTTTopicPrefix: getEnv("MQTT_TopicPrefix", "pancyguard"),

		// Web Server
		Port:            getEnv("PORT", "3000"),
		WebAllowedHosts: getEnv("webAllowedHosts", ""),
		WebAPIToken:     getEnv("webApiToken", ""),
		WebRateLimit:    getEnvInt("webRateLimit", 100),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Logging
		LogLevel: getEnv("logLevel", "debug"),
		LogsDir:  getEnv("logsDir", "./logs"),

		// Webhooks
		ErrorWebhook:      getEnv("errorWebhook", ""),
		LogsWebhook:       getEnv("logsWebhook", ""),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
	}

	if cfg.WarningLimit < 1 {
		cfg.WarningLimit = DefaultWarningLimit
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt parses an integer environment variable, falling back on bad input
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvList splits a comma separated variable into trimmed, non-empty items
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
