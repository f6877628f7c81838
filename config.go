package swaggermcp

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the service configuration. Values come from the
// environment, optionally seeded from a .env file, with flags able to
// override on top.
type Config struct {
	// ControlAddr is the listen address of the control API.
	ControlAddr string `validate:"required,hostname_port"`
	// AppHost and AppPort fix where generated endpoints are served.
	AppHost string `validate:"required"`
	AppPort int    `validate:"required,min=1,max=65535"`
	// DataDir backs the upload and artifact store.
	DataDir string `validate:"required"`

	StopTimeout time.Duration `validate:"min=0"`
	SettleDelay time.Duration `validate:"min=0"`
	ReadyProbe  time.Duration `validate:"min=0"`
	BindRetries int           `validate:"min=1"`

	LogLevel string `validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		ControlAddr: "127.0.0.1:8000",
		AppHost:     defaultAppHost,
		AppPort:     defaultAppPort,
		DataDir:     "data",
		StopTimeout: defaultStopTimeout,
		SettleDelay: defaultSettleDelay,
		ReadyProbe:  defaultReadyProbe,
		BindRetries: defaultBindRetries,
		LogLevel:    "info",
	}
}

// LoadConfig builds the configuration from defaults, an optional .env
// file, and the process environment, then validates it. envFile may be
// empty; a missing .env is not an error.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	cfg.ControlAddr = envString("SWAGGERMCP_CONTROL_ADDR", cfg.ControlAddr)
	cfg.AppHost = envString("SWAGGERMCP_APP_HOST", cfg.AppHost)
	cfg.DataDir = envString("SWAGGERMCP_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("SWAGGERMCP_LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.AppPort, err = envInt("SWAGGERMCP_APP_PORT", cfg.AppPort); err != nil {
		return Config{}, err
	}
	if cfg.BindRetries, err = envInt("SWAGGERMCP_BIND_RETRIES", cfg.BindRetries); err != nil {
		return Config{}, err
	}
	if cfg.StopTimeout, err = envDuration("SWAGGERMCP_STOP_TIMEOUT", cfg.StopTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SettleDelay, err = envDuration("SWAGGERMCP_SETTLE_DELAY", cfg.SettleDelay); err != nil {
		return Config{}, err
	}
	if cfg.ReadyProbe, err = envDuration("SWAGGERMCP_READY_PROBE", cfg.ReadyProbe); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
