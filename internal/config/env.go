package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nao1215/imgfetcher/internal/digest"
)

// EnvPrefix is the prefix of every environment variable read by imgfetcher,
// e.g. IMGFETCHER_TIMEOUT.
var EnvPrefix = strings.ToUpper(AppName)

// Env mirrors the settings that can be overridden from the environment.
// Unset variables leave the zero value, which Apply ignores.
type Env struct {
	Timeout     time.Duration `envconfig:"TIMEOUT"`
	UserAgent   string        `envconfig:"USER_AGENT"`
	Digest      string        `envconfig:"DIGEST"`
	MaxBodySize int64         `envconfig:"MAX_BODY_SIZE"`
	Proxy       string        `envconfig:"PROXY"`
	HistoryDir  string        `envconfig:"HISTORY_DIR"`
	Verbose     bool          `envconfig:"VERBOSE"`
}

// LoadDotEnv loads variables from a dotenv file into the process environment.
// Variables that are already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadEnv reads IMGFETCHER_* variables from the environment.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &env, nil
}

// Apply overlays the set environment values onto cfg.
func (e *Env) Apply(cfg *Config) {
	if e.Timeout > 0 {
		cfg.Timeout = e.Timeout
	}
	if e.UserAgent != "" {
		cfg.UserAgent = e.UserAgent
	}
	if e.Digest != "" {
		cfg.Digest = digest.Algorithm(e.Digest)
	}
	if e.MaxBodySize > 0 {
		cfg.MaxBodySize = e.MaxBodySize
	}
	if e.Proxy != "" {
		cfg.ProxyAddress = e.Proxy
	}
	if e.HistoryDir != "" {
		cfg.HistoryDir = e.HistoryDir
	}
	if e.Verbose {
		cfg.Verbose = true
	}
}
