package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func minimalConfig() string {
	return `
security:
  jwt:
    secret: "` + testSecret + `"
`
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hub.DefaultHost != "mikvah-pc" {
		t.Errorf("hub default host = %q", cfg.Hub.DefaultHost)
	}
	if cfg.Hub.DefaultPort != 4960 {
		t.Errorf("hub default port = %d, want 4960", cfg.Hub.DefaultPort)
	}
	if cfg.Discovery.DefaultPort != 1433 {
		t.Errorf("discovery default port = %d, want 1433", cfg.Discovery.DefaultPort)
	}
	if cfg.Discovery.DefaultName != "MyKehila" {
		t.Errorf("discovery default db = %q", cfg.Discovery.DefaultName)
	}
	if cfg.Discovery.DefaultUser != "mysoft" {
		t.Errorf("discovery default user = %q", cfg.Discovery.DefaultUser)
	}
	if !cfg.Discovery.Enabled {
		t.Error("discovery should default to enabled")
	}
	if cfg.MQTT.Enabled {
		t.Error("mqtt should default to disabled")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	content := minimalConfig() + `
hub:
  default_host: "10.1.2.3"
  default_port: 8080
  request_timeout: 3
discovery:
  enabled: false
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hub.DefaultHost != "10.1.2.3" || cfg.Hub.DefaultPort != 8080 {
		t.Errorf("hub = %+v", cfg.Hub)
	}
	if cfg.Discovery.Enabled {
		t.Error("discovery should be disabled")
	}
	if cfg.HubRequestTimeout() != 3*time.Second {
		t.Errorf("request timeout = %v, want 3s", cfg.HubRequestTimeout())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOORCORE_DATABASE_PATH", "/tmp/override.db")
	t.Setenv("DOORCORE_API_PORT", "9999")
	t.Setenv("DOORCORE_JWT_SECRET", testSecret+"-env")

	cfg, err := Load(writeConfig(t, minimalConfig()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.API.Port != 9999 {
		t.Errorf("api port = %d", cfg.API.Port)
	}
	if cfg.Security.JWT.Secret != testSecret+"-env" {
		t.Error("env secret should win over file")
	}
}

func TestValidateRejectsMissingSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
api:
  port: 8090
`))
	if err == nil || !strings.Contains(err.Error(), "jwt.secret") {
		t.Errorf("err = %v, want jwt.secret complaint", err)
	}
}

func TestValidateRejectsShortSecret(t *testing.T) {
	_, err := Load(writeConfig(t, `
security:
  jwt:
    secret: "short"
`))
	if err == nil || !strings.Contains(err.Error(), "32 characters") {
		t.Errorf("err = %v, want length complaint", err)
	}
}

func TestValidateRejectsBadPorts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "api port",
			content: minimalConfig() + "api:\n  port: 70000\n",
			want:    "api.port",
		},
		{
			name:    "hub port",
			content: minimalConfig() + "hub:\n  default_port: 0\n  request_timeout: 10\n",
			want:    "hub.default_port",
		},
		{
			name:    "discovery port",
			content: minimalConfig() + "discovery:\n  enabled: true\n  default_port: -1\n  query_timeout: 10\n",
			want:    "discovery.default_port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q complaint", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load should fail on a missing file")
	}
}

func TestDurationGetters(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DiscoveryQueryTimeout() != 10*time.Second {
		t.Errorf("discovery timeout = %v, want 10s", cfg.DiscoveryQueryTimeout())
	}
	if cfg.GetReadTimeout() != 30*time.Second {
		t.Errorf("read timeout = %v, want 30s", cfg.GetReadTimeout())
	}
}
