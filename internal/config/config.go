// Package config loads bridge settings from the environment
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTPConfig
	Registry RegistryConfig
	Print    PrintDefaults
}

type HTTPConfig struct {
	Port            string        `env:"PRINT_BRIDGE_PORT" env-default:"3001"`
	ReadTimeout     time.Duration `env:"PRINT_BRIDGE_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"PRINT_BRIDGE_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `env:"PRINT_BRIDGE_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type RegistryConfig struct {
	Path string `env:"PRINTER_REGISTRY_PATH" env-default:"printer_registry.json"`
}

// PrintDefaults seeds the print service facade; the fields mirror its
// runtime configuration
type PrintDefaults struct {
	Enabled      bool   `env:"PRINT_ENABLED" env-default:"false"`
	ServerURL    string `env:"PRINT_SERVER_URL" env-default:"http://localhost:3001"`
	PrinterIP    string `env:"PRINTER_IP" env-default:"192.168.1.100"`
	PrinterPort  int    `env:"PRINTER_PORT" env-default:"9100"`
	StoreName    string `env:"STORE_NAME" env-default:"POS Suite Store"`
	StoreAddress string `env:"STORE_ADDRESS"`
	StorePhone   string `env:"STORE_PHONE"`
	Footer       string `env:"RECEIPT_FOOTER" env-default:"Thank you for your business!"`
}

// Load reads configuration from the environment, with an optional .env
// file merged in first
func Load() (*Config, error) {
	// A missing .env file is fine, the environment alone is enough
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read the config: %w", err)
	}

	return &cfg, nil
}
