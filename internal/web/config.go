package web

import (
	"time"

	"github.com/wkg-uslp/internal/config"
)

// Config represents the status server configuration
type Config struct {
	Addr            string
	Token           string // required X-API-Key value, empty for open access
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a configuration listening on addr
func DefaultConfig(addr string) *Config {
	return &Config{
		Addr:            addr,
		Token:           config.GetEnv("USLP_STATUS_TOKEN", ""),
		ShutdownTimeout: 5 * time.Second,
	}
}
