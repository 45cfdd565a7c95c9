package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvConfig lists the UNICLIP_* variables. Unset variables leave the
// corresponding Config field untouched.
type EnvConfig struct {
	DatabaseDSN      *string        `env:"UNICLIP_DATABASE_DSN"`
	SessionBackend   *string        `env:"UNICLIP_SESSION_BACKEND"`
	SessionDBPath    *string        `env:"UNICLIP_SESSION_DB_PATH"`
	RedisAddr        *string        `env:"UNICLIP_REDIS_ADDR"`
	RedisDB          *int           `env:"UNICLIP_REDIS_DB"`
	SessionTTL       *time.Duration `env:"UNICLIP_SESSION_TTL"`
	ClientKeyPath    *string        `env:"UNICLIP_CLIENT_KEY_PATH"`
	SessionSecret    *string        `env:"UNICLIP_SESSION_SECRET"`
	SessionNamespace *string        `env:"UNICLIP_SESSION_NAMESPACE"`
	RememberPassword *bool          `env:"UNICLIP_REMEMBER_PASSWORD"`
	RequestTimeout   *time.Duration `env:"UNICLIP_REQUEST_TIMEOUT"`
	LogLevel         *string        `env:"UNICLIP_LOG_LEVEL"`
	LogBackend       *string        `env:"UNICLIP_LOG_BACKEND"`
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var ec EnvConfig
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:        &ec,
		Lookuper:      lookuperFunc(lookup),
		DefaultNoInit: true,
	})
	if err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	setString(&cfg.DatabaseDSN, ec.DatabaseDSN)
	setString(&cfg.SessionBackend, ec.SessionBackend)
	setString(&cfg.SessionDBPath, ec.SessionDBPath)
	setString(&cfg.RedisAddr, ec.RedisAddr)
	setString(&cfg.ClientKeyPath, ec.ClientKeyPath)
	setString(&cfg.SessionSecret, ec.SessionSecret)
	setString(&cfg.SessionNamespace, ec.SessionNamespace)
	setString(&cfg.LogLevel, ec.LogLevel)
	setString(&cfg.LogBackend, ec.LogBackend)

	if ec.RedisDB != nil {
		cfg.RedisDB = *ec.RedisDB
	}
	if ec.SessionTTL != nil {
		cfg.SessionTTL = *ec.SessionTTL
	}
	if ec.RememberPassword != nil {
		cfg.RememberPassword = *ec.RememberPassword
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	return nil
}

type lookuperFunc func(string) (string, bool)

func (f lookuperFunc) Lookup(key string) (string, bool) {
	return f(key)
}
