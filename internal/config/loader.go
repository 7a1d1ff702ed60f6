package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/imgfetcher/internal/digest"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".imgfetcher"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .imgfetcher configuration file.
// Zero values mean "not set" and leave the current setting untouched.
type File struct {
	// URLs replaces the built-in URL list.
	URLs []string `yaml:"urls,omitempty"`

	// Pages are HTML pages whose images are appended to URLs.
	Pages []string `yaml:"pages,omitempty"`

	Timeout     time.Duration `yaml:"timeout,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
	Digest      string        `yaml:"digest,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`

	RespectRobots bool `yaml:"respectRobots,omitempty"`
	Metadata      bool `yaml:"metadata,omitempty"`
	History       bool `yaml:"history,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .imgfetcher in the current directory
//  3. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}

// Apply overlays the non-zero settings of the file onto cfg.
// URLs from the file replace the current list.
func (cf *File) Apply(cfg *Config) {
	if len(cf.URLs) > 0 {
		cfg.URLs = append([]string(nil), cf.URLs...)
		cfg.UsingDefaultURLs = false
	}
	if len(cf.Pages) > 0 {
		cfg.PageURLs = append(cfg.PageURLs, cf.Pages...)
	}
	if cf.Timeout > 0 {
		cfg.Timeout = cf.Timeout
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.Digest != "" {
		cfg.Digest = digest.Algorithm(cf.Digest)
	}
	if cf.MaxBodySize > 0 {
		cfg.MaxBodySize = cf.MaxBodySize
	}
	if cf.Proxy != "" {
		cfg.ProxyAddress = cf.Proxy
	}
	if cf.RespectRobots {
		cfg.RespectRobots = true
	}
	if cf.Metadata {
		cfg.ExtractMetadata = true
	}
	if cf.History {
		cfg.SaveHistory = true
	}
}
