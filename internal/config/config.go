// Package config loads and validates process configuration from the
// environment, via viper, the way the rest of the example pack configures
// its services (see opd-ai-violence's use of spf13/viper alongside
// logrus). It fails fast on a misconfigured production deployment instead
// of limping along with defaults that would silently weaken security.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved, validated process configuration.
type Config struct {
	Port     string
	Env      string // "development" or "production"
	RedisURL string
	// AllowInMemoryRoomStore permits falling back to an in-process room
	// store when RedisURL is empty. Only sane outside production.
	AllowInMemoryRoomStore bool

	DatabaseURL           string
	EnableDBPersistence   bool

	// CORSOrigins is the list of origins allowed to open a WebSocket
	// connection. Required, and may never be "*", in production.
	CORSOrigins []string
}

// Load reads configuration from the environment (viper's AutomaticEnv),
// applies defaults, and validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("ALLOW_IN_MEMORY_ROOM_STORE", false)
	v.SetDefault("ENABLE_DB_PERSISTENCE", false)

	cfg := Config{
		Port:                   v.GetString("PORT"),
		Env:                    v.GetString("ENV"),
		RedisURL:               v.GetString("REDIS_URL"),
		AllowInMemoryRoomStore: v.GetBool("ALLOW_IN_MEMORY_ROOM_STORE"),
		DatabaseURL:            v.GetString("DATABASE_URL"),
		EnableDBPersistence:    v.GetBool("ENABLE_DB_PERSISTENCE"),
		CORSOrigins:            splitAndTrim(v.GetString("CORS_ORIGINS")),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	isProduction := c.Env == "production"

	if c.RedisURL == "" && !c.AllowInMemoryRoomStore {
		return fmt.Errorf("config: REDIS_URL is unset; set ALLOW_IN_MEMORY_ROOM_STORE=true to run without Redis")
	}
	if c.EnableDBPersistence && c.DatabaseURL == "" {
		return fmt.Errorf("config: ENABLE_DB_PERSISTENCE=true requires DATABASE_URL")
	}
	if isProduction {
		if len(c.CORSOrigins) == 0 {
			return fmt.Errorf("config: CORS_ORIGINS is required in production")
		}
		for _, o := range c.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("config: CORS_ORIGINS may not be \"*\" in production")
			}
		}
	}
	return nil
}

func splitAndTrim(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
