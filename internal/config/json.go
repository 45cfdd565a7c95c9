package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/uniclip/internal/flagx"
	"github.com/dmitrijs2005/uniclip/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Durations accept
// "30s"-style strings or integer nanoseconds. Absent fields keep the value
// they had before the file was read.
type JSONConfig struct {
	DatabaseDSN      *string         `json:"database_dsn"`
	SessionBackend   *string         `json:"session_backend"`
	SessionDBPath    *string         `json:"session_db_path"`
	RedisAddr        *string         `json:"redis_addr"`
	RedisDB          *int            `json:"redis_db"`
	SessionTTL       *timex.Duration `json:"session_ttl"`
	ClientKeyPath    *string         `json:"client_key_path"`
	SessionSecret    *string         `json:"session_secret"`
	SessionNamespace *string         `json:"session_namespace"`
	RememberPassword *bool           `json:"remember_password"`
	RequestTimeout   *timex.Duration `json:"request_timeout"`
	LogLevel         *string         `json:"log_level"`
	LogBackend       *string         `json:"log_backend"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(b, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	jc.apply(cfg)
	return nil
}

func (jc *JSONConfig) apply(cfg *Config) {
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.SessionBackend, jc.SessionBackend)
	setString(&cfg.SessionDBPath, jc.SessionDBPath)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.ClientKeyPath, jc.ClientKeyPath)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setString(&cfg.SessionNamespace, jc.SessionNamespace)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)

	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
	if jc.SessionTTL != nil {
		cfg.SessionTTL = jc.SessionTTL.Duration
	}
	if jc.RememberPassword != nil {
		cfg.RememberPassword = *jc.RememberPassword
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
