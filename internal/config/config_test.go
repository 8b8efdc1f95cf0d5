package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	envVars := []string{
		"EP_SERVER_PORT", "EP_SERVER_READ_TIMEOUT", "EP_SERVER_WRITE_TIMEOUT",
		"EP_SECURITY_ALLOWED_ORIGINS", "EP_SECURITY_ENABLE_CORS",
		"EP_LOGGING_LEVEL", "EP_LOGGING_FORMAT", "EP_LOGGING_OUTPUT",
		"EP_EVENT_DATE", "EP_EVENT_DELEGATE_TARGET", "EP_EVENT_SPONSOR_TARGET",
		"EP_PIPELINE_WORKBOOK_FILE", "EP_PIPELINE_CHART_RENDER_DISABLED",
		"EP_WEBSOCKET_READ_BUFFER_SIZE",
	}

	originalEnv := make(map[string]string)
	for _, envVar := range envVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}

	defer func() {
		for _, envVar := range envVars {
			if val, exists := originalEnv[envVar]; exists && val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	}()

	tests := []struct {
		name        string
		setupEnv    func()
		setupFile   func() string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "default configuration with no env vars",
			setupEnv: func() {
				for _, envVar := range envVars {
					os.Unsetenv(envVar)
				}
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)

				assert.Equal(t, "2026-06-02", cfg.Event.Date)
				assert.Equal(t, 300, cfg.Event.DelegateTarget)
				assert.Equal(t, 25, cfg.Event.SponsorTarget)

				assert.Empty(t, cfg.Pipeline.WorkbookFile)
				assert.False(t, cfg.Pipeline.ChartRenderDisabled)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				os.Setenv("EP_SERVER_PORT", "9090")
				os.Setenv("EP_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("EP_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("EP_LOGGING_LEVEL", "debug")
				os.Setenv("EP_LOGGING_FORMAT", "text")
				os.Setenv("EP_EVENT_DELEGATE_TARGET", "500")
				os.Setenv("EP_PIPELINE_CHART_RENDER_DISABLED", "true")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format) // validate() forces json
				assert.Equal(t, 500, cfg.Event.DelegateTarget)
				assert.True(t, cfg.Pipeline.ChartRenderDisabled)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				os.Setenv("EP_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "invalid event date",
			setupEnv: func() {
				os.Setenv("EP_EVENT_DATE", "June 2nd")
			},
			wantErr: true,
		},
		{
			name: "zero delegate target",
			setupEnv: func() {
				os.Setenv("EP_EVENT_DELEGATE_TARGET", "0")
			},
			wantErr: true,
		},
		{
			name: "negative timeout",
			setupEnv: func() {
				os.Setenv("EP_SERVER_READ_TIMEOUT", "-5s")
			},
			wantErr: true,
		},
		{
			name: "config file with environment override",
			setupEnv: func() {
				os.Setenv("EP_SERVER_PORT", "7070")
				os.Setenv("EP_LOGGING_LEVEL", "warn")
			},
			setupFile: func() string {
				tempDir := t.TempDir()
				configFile := filepath.Join(tempDir, "config.yaml")
				configContent := `
server:
  port: 6060
logging:
  level: error
event:
  sponsor_target: 40
`
				require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))
				originalDir, _ := os.Getwd()
				os.Chdir(tempDir)
				t.Cleanup(func() { os.Chdir(originalDir) })
				return configFile
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)     // from env
				assert.Equal(t, "warn", cfg.Logging.Level) // from env
				assert.Equal(t, 40, cfg.Event.SponsorTarget) // from file
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, envVar := range envVars {
				os.Unsetenv(envVar)
			}

			if tt.setupEnv != nil {
				tt.setupEnv()
			}

			if tt.setupFile != nil {
				_ = tt.setupFile()
			}

			cfg, err := Load()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

// TestLoadFromFile tests the loadFromFile function
func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "valid YAML config",
			fileContent: `
server:
  port: 9000
  read_timeout: 25s
security:
  allowed_origins: ["http://test.com"]
event:
  name: "Summit 2027"
  delegate_target: 450
pipeline:
  workbook_file: "marketing_may.xlsx"
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 25*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://test.com"}, cfg.Security.AllowedOrigins)
				assert.Equal(t, "Summit 2027", cfg.Event.Name)
				assert.Equal(t, 450, cfg.Event.DelegateTarget)
				assert.Equal(t, "marketing_may.xlsx", cfg.Pipeline.WorkbookFile)
			},
		},
		{
			name:        "invalid YAML syntax",
			fileContent: "invalid: yaml: content: [unclosed",
			wantErr:     true,
		},
		{
			name: "partial config overlays defaults",
			fileContent: `
server:
  port: 8888
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8888, cfg.Server.Port)
				// Untouched fields keep their default values
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 300, cfg.Event.DelegateTarget)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configFile := filepath.Join(tempDir, "config.yaml")
			require.NoError(t, os.WriteFile(configFile, []byte(tt.fileContent), 0644))

			cfg := *Default()
			err := loadFromFile(configFile, &cfg)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			if tt.validateCfg != nil {
				tt.validateCfg(t, &cfg)
			}
		})
	}

	t.Run("non-existent file", func(t *testing.T) {
		cfg := *Default()
		err := loadFromFile("/non/existent/file.yaml", &cfg)
		assert.Error(t, err)
	})
}

// TestValidate tests the validate function
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid configuration",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: true,
			errMsg:  "invalid server port: 0",
		},
		{
			name:    "invalid port - too high",
			mutate:  func(cfg *Config) { cfg.Server.Port = 99999 },
			wantErr: true,
			errMsg:  "invalid server port: 99999",
		},
		{
			name:    "invalid read timeout",
			mutate:  func(cfg *Config) { cfg.Server.ReadTimeout = -time.Second },
			wantErr: true,
			errMsg:  "server read timeout must be positive",
		},
		{
			name:    "empty allowed origins",
			mutate:  func(cfg *Config) { cfg.Security.AllowedOrigins = nil },
			wantErr: true,
			errMsg:  "at least one allowed origin",
		},
		{
			name:    "non-positive sponsor target",
			mutate:  func(cfg *Config) { cfg.Event.SponsorTarget = -1 },
			wantErr: true,
			errMsg:  "registration targets must be positive",
		},
		{
			name:    "unparseable event date",
			mutate:  func(cfg *Config) { cfg.Event.Date = "02/06/2026" },
			wantErr: true,
			errMsg:  "invalid event date",
		},
		{
			name: "logging format auto-correction",
			mutate: func(cfg *Config) {
				cfg.Logging.Format = "text"
				cfg.Logging.Output = "console"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()

			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, "json", cfg.Logging.Format)
			assert.Contains(t, []string{"both", "file"}, cfg.Logging.Output)
		})
	}
}

// TestEventDate verifies event date parsing
func TestEventDate(t *testing.T) {
	cfg := Default()
	date, err := cfg.EventDate()
	require.NoError(t, err)
	assert.Equal(t, 2026, date.Year())
	assert.Equal(t, time.June, date.Month())
	assert.Equal(t, 2, date.Day())
}

// TestDefault tests the Default function
func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1<<20, cfg.Server.MaxHeaderBytes)
	assert.Equal(t, DefaultOperationTimeout, cfg.Server.OperationTimeout)

	assert.Equal(t, DefaultEventName, cfg.Event.Name)
	assert.Equal(t, DefaultDelegateTarget, cfg.Event.DelegateTarget)
	assert.Equal(t, DefaultSponsorTarget, cfg.Event.SponsorTarget)

	assert.Empty(t, cfg.Pipeline.WorkbookFile)
	assert.False(t, cfg.Pipeline.ChartRenderDisabled)

	assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
	assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
}

// TestGetConfigFilePath tests the getConfigFilePath function
func TestGetConfigFilePath(t *testing.T) {
	t.Run("no config file exists", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(tempDir)

		path := getConfigFilePath()
		assert.Empty(t, path)
	})

	t.Run("config file in current directory", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(tempDir)

		configFile := filepath.Join(tempDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 8080\n"), 0644))

		path := getConfigFilePath()
		assert.Equal(t, "config.yaml", path)
	})

	t.Run("config file in configs directory", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(tempDir)

		configsDir := filepath.Join(tempDir, "configs")
		require.NoError(t, os.MkdirAll(configsDir, 0755))
		configFile := filepath.Join(configsDir, "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("server:\n  port: 8080\n"), 0644))

		path := getConfigFilePath()
		assert.Equal(t, "configs/config.yaml", path)
	})
}

// TestEnvironmentVariableParsing tests environment variable parsing edge cases
func TestEnvironmentVariableParsing(t *testing.T) {
	originalEnv := map[string]string{
		"EP_SECURITY_ALLOWED_ORIGINS": os.Getenv("EP_SECURITY_ALLOWED_ORIGINS"),
		"EP_SECURITY_RATE_LIMIT_RPS":  os.Getenv("EP_SECURITY_RATE_LIMIT_RPS"),
		"EP_WEBSOCKET_PING_PERIOD":    os.Getenv("EP_WEBSOCKET_PING_PERIOD"),
		"EP_LOGGING_DEVELOPMENT":      os.Getenv("EP_LOGGING_DEVELOPMENT"),
		"EP_PIPELINE_WORKBOOK_FILE":   os.Getenv("EP_PIPELINE_WORKBOOK_FILE"),
	}

	defer func() {
		for key, val := range originalEnv {
			if val == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, val)
			}
		}
	}()

	tests := []struct {
		name     string
		setupEnv func()
		validate func(*testing.T, *Config)
	}{
		{
			name: "comma-separated origins",
			setupEnv: func() {
				os.Setenv("EP_SECURITY_ALLOWED_ORIGINS", "http://localhost:3000,https://app.example.com")
			},
			validate: func(t *testing.T, cfg *Config) {
				expected := []string{"http://localhost:3000", "https://app.example.com"}
				assert.Equal(t, expected, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "float rate limit",
			setupEnv: func() {
				os.Setenv("EP_SECURITY_RATE_LIMIT_RPS", "150.75")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 150.75, cfg.Security.RateLimit.RPS)
			},
		},
		{
			name: "duration parsing",
			setupEnv: func() {
				os.Setenv("EP_WEBSOCKET_PING_PERIOD", "2m30s")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2*time.Minute+30*time.Second, cfg.WebSocket.PingPeriod)
			},
		},
		{
			name: "boolean parsing",
			setupEnv: func() {
				os.Setenv("EP_LOGGING_DEVELOPMENT", "false")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Logging.Development)
			},
		},
		{
			name: "workbook override",
			setupEnv: func() {
				os.Setenv("EP_PIPELINE_WORKBOOK_FILE", "marketing_may.xlsx")
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "marketing_may.xlsx", cfg.Pipeline.WorkbookFile)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key := range originalEnv {
				os.Unsetenv(key)
			}

			if tt.setupEnv != nil {
				tt.setupEnv()
			}

			cfg, err := Load()
			require.NoError(t, err)

			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}
