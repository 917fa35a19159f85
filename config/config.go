package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Sim       SimConfig
	Data      DataConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Environment    string
	AllowedOrigins []string
}

type SimConfig struct {
	TickHz      int
	BroadcastHz int
	Seed        int64 // 0 means seed each match from the clock
}

// DataConfig points at optional JSON tables; empty paths use the
// built-in ones.
type DataConfig struct {
	BalancePath string
	CatalogPath string
}

type LoggingConfig struct {
	Level      string
	JSONFormat bool
}

type RateLimitConfig struct {
	PurchasesPerSecond float64
	Burst              int
}

// InitConfig loads a .env file if there is one. A missing file is not an
// error; the process environment still applies.
func InitConfig() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
		return
	}
	slog.Debug("Successfully loaded environment variables")
}

// Load reads the environment (after InitConfig) into a validated Config.
func Load() (*Config, error) {
	InitConfig()

	tickHz, err := intEnv("SIM_TICK_HZ", 60)
	if err != nil {
		return nil, err
	}
	broadcastHz, err := intEnv("BROADCAST_HZ", 20)
	if err != nil {
		return nil, err
	}
	seed, err := strconv.ParseInt(GetEnv("MATCH_SEED", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("MATCH_SEED: %w", err)
	}
	rps, err := strconv.ParseFloat(GetEnv("PURCHASE_RATE_PER_SECOND", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("PURCHASE_RATE_PER_SECOND: %w", err)
	}
	burst, err := intEnv("PURCHASE_BURST", 5)
	if err != nil {
		return nil, err
	}

	environment := GetEnv("ENVIRONMENT", "development")
	cfg := &Config{
		Server: ServerConfig{
			Port:           GetEnv("SERVER_PORT", "8080"),
			Environment:    environment,
			AllowedOrigins: splitList(GetEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Sim: SimConfig{
			TickHz:      tickHz,
			BroadcastHz: broadcastHz,
			Seed:        seed,
		},
		Data: DataConfig{
			BalancePath: GetEnv("BALANCE_PATH", ""),
			CatalogPath: GetEnv("CATALOG_PATH", ""),
		},
		Logging: LoggingConfig{
			Level:      GetEnv("LOG_LEVEL", "info"),
			JSONFormat: environment == "production",
		},
		RateLimit: RateLimitConfig{
			PurchasesPerSecond: rps,
			Burst:              burst,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.Sim.TickHz <= 0 {
		return fmt.Errorf("SIM_TICK_HZ must be > 0, got %d", c.Sim.TickHz)
	}
	if c.Sim.BroadcastHz <= 0 || c.Sim.BroadcastHz > c.Sim.TickHz {
		return fmt.Errorf("BROADCAST_HZ must be in 1..%d, got %d", c.Sim.TickHz, c.Sim.BroadcastHz)
	}
	if c.Sim.TickHz%c.Sim.BroadcastHz != 0 {
		return fmt.Errorf("BROADCAST_HZ %d must divide SIM_TICK_HZ %d", c.Sim.BroadcastHz, c.Sim.TickHz)
	}
	if c.RateLimit.PurchasesPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("purchase rate limit must be positive")
	}
	return nil
}

// GetEnv returns the variable v, or fallback when it is unset or empty.
func GetEnv(v, fallback string) string {
	if b := os.Getenv(v); b != "" {
		return b
	}
	return fallback
}

func intEnv(name string, fallback int) (int, error) {
	n, err := strconv.Atoi(GetEnv(name, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
