package config

import (
	"os"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	os.Setenv("botToken", "test-token")
	os.Setenv("PORT", "3001")
	os.Setenv("enviroment", "test")
	os.Setenv("warningLimit", "5")
	defer func() {
		os.Unsetenv("botToken")
		os.Unsetenv("PORT")
		os.Unsetenv("enviroment")
		os.Unsetenv("warningLimit")
	}()

	resetForTesting()

	config, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if config.BotToken != "test-token" {
		t.Errorf("BotToken = %v, want %v", config.BotToken, "test-token")
	}

	if config.Port != "3001" {
		t.Errorf("Port = %v, want %v", config.Port, "3001")
	}

	if config.Environment != "test" {
		t.Errorf("Environment = %v, want %v", config.Environment, "test")
	}

	if config.WarningLimit != 5 {
		t.Errorf("WarningLimit = %v, want %v", config.WarningLimit, 5)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	if got := getEnv("TEST_VAR", "default"); got != "test-value" {
		t.Errorf("getEnv() = %v, want %v", got, "test-value")
	}

	if got := getEnv("NON_EXISTENT_VAR", "default"); got != "default" {
		t.Errorf("getEnv() = %v, want %v", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 7},
		{"valid", "12", 12},
		{"padded", " 4 ", 4},
		{"garbage", "tres", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				os.Unsetenv("TEST_INT")
			} else {
				os.Setenv("TEST_INT", tt.value)
				defer os.Unsetenv("TEST_INT")
			}
			if got := getEnvInt("TEST_INT", 7); got != tt.want {
				t.Errorf("getEnvInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	os.Setenv("TEST_LIST", " exe, ,zip ,rar")
	defer os.Unsetenv("TEST_LIST")

	got := getEnvList("TEST_LIST", "")
	want := []string{"exe", "zip", "rar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("getEnvList() = %v, want %v", got, want)
	}

	if got := getEnvList("NON_EXISTENT_LIST", ""); len(got) != 0 {
		t.Errorf("getEnvList() on empty default = %v, want empty", got)
	}
}

func TestIsProd(t *testing.T) {
	resetForTesting()
	os.Setenv("enviroment", "prod")
	config, _ := Load()

	if !config.IsProd() {
		t.Error("IsProd() should return true when environment is 'prod'")
	}

	resetForTesting()
	os.Setenv("enviroment", "dev")
	config, _ = Load()

	if config.IsProd() {
		t.Error("IsProd() should return false when environment is not 'prod'")
	}

	os.Unsetenv("enviroment")
}

func TestGet(t *testing.T) {
	resetForTesting()

	config := Get()
	if config == nil {
		t.Fatal("Get() returned nil")
	}

	config2 := Get()
	if config != config2 {
		t.Error("Get() should return the same config on subsequent calls")
	}
}

func TestDefaultValues(t *testing.T) {
	for _, key := range []string{"botToken", "storeBackend", "dataDir", "mongodbUrl", "dbName",
		"warningLimit", "noticeSeconds", "blockedExtensions", "inviteAllowlist", "PORT", "enviroment", "MQTT_Host", "webRateLimit"} {
		os.Unsetenv(key)
	}

	resetForTesting()
	config, _ := Load()

	if config.StoreBackend != "file" {
		t.Errorf("StoreBackend default = %v, want %v", config.StoreBackend, "file")
	}

	if config.DataDir != "./data" {
		t.Errorf("DataDir default = %v, want %v", config.DataDir, "./data")
	}

	if config.DBName != "PancyGuard" {
		t.Errorf("DBName default = %v, want %v", config.DBName, "PancyGuard")
	}

	if config.WarningLimit != DefaultWarningLimit {
		t.Errorf("WarningLimit default = %v, want %v", config.WarningLimit, DefaultWarningLimit)
	}

	if config.NoticeSeconds != 5 {
		t.Errorf("NoticeSeconds default = %v, want %v", config.NoticeSeconds, 5)
	}

	if len(config.BlockedExtensions) == 0 {
		t.Error("BlockedExtensions default should not be empty")
	}

	if len(config.InviteAllowlist) != 0 {
		t.Errorf("InviteAllowlist default = %v, want empty", config.InviteAllowlist)
	}

	if config.Port != "3000" {
		t.Errorf("Port default = %v, want %v", config.Port, "3000")
	}

	if config.MQTTHost != "" {
		t.Errorf("MQTTHost default = %v, want empty", config.MQTTHost)
	}

	if config.WebRateLimit != 100 {
		t.Errorf("WebRateLimit default = %v, want %v", config.WebRateLimit, 100)
	}
}

func TestWarningLimitFloor(t *testing.T) {
	os.Setenv("warningLimit", "0")
	defer os.Unsetenv("warningLimit")

	resetForTesting()
	config, _ := Load()

	if config.WarningLimit != DefaultWarningLimit {
		t.Errorf("WarningLimit = %v, want %v", config.WarningLimit, DefaultWarningLimit)
	}
}
