// Package config provides configuration structures and utilities for imgfetcher.
// It defines the fetch settings, the optional .imgfetcher YAML file and the
// environment overrides that are layered under the CLI flags.
package config
