package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDBPath      = "db_path"
	cfgKeyAddr        = "addr"
	cfgKeyLogLevel    = "log_level"
	cfgKeyCORSOrigins = "cors_origins"
	cfgKeyRateLimit   = "rate_limit"

	defaultAddr = ":3456"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	DBPath      string `yaml:"db_path,omitempty"`
	Addr        string `yaml:"addr"`
	LogLevel    string `yaml:"log_level,omitempty"`
	CORSOrigins string `yaml:"cors_origins,omitempty"`
	RateLimit   int    `yaml:"rate_limit"`
}

// loadDotEnv loads ./.env into the process environment when present.
// Variables already set are left alone.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

// loadConfig reads config.yaml from configDir using Viper. A missing file is
// not an error; defaults and environment variables still apply.
//
// Environment: BINLID_ADDR then PORT for addr, BINLID_LOG_LEVEL,
// BINLID_CORS_ORIGINS, BINLID_RATE_LIMIT. db_path has its own precedence
// chain in paths.ResolveDBPath.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetDefault(cfgKeyRateLimit, 0)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	_ = v.BindEnv(cfgKeyAddr, "BINLID_ADDR", "PORT")
	_ = v.BindEnv(cfgKeyLogLevel, "BINLID_LOG_LEVEL")
	_ = v.BindEnv(cfgKeyCORSOrigins, "BINLID_CORS_ORIGINS")
	_ = v.BindEnv(cfgKeyRateLimit, "BINLID_RATE_LIMIT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path, dbPath string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}

	data, err := yaml.Marshal(&configFile{DBPath: dbPath, Addr: defaultAddr})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// listenAddr accepts a bare port (as PORT usually is) or host:port.
func listenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return defaultAddr
	}
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}
