// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads douban-comment settings from defaults, config files,
// .env files, environment variables and command line flags.
package config // import "github.com/toeirei/douban-comment/internal/config"

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName    = "douban-comment"
	configName = "douban-comment"
	// EnvPrefix prefixes every environment variable read by LoadConfig.
	EnvPrefix = "DOUBAN_COMMENT"
)

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), appName)
		default:
			configDir = "/etc/" + appName
		}
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(dir, appName)
	}
	return filepath.Join(configDir, configName+".yaml"), nil
}

// legacyEnv maps config keys to the unprefixed variables used by older .env
// files. Prefixed variables take precedence.
var legacyEnv = map[string]string{
	"douban.cookies": "DOUBAN_COOKIES",
	"output.dir":     "OUTPUT_DIR",
}

// flagKeys maps command line flag names to the config keys they override.
var flagKeys = map[string]string{
	"language":    "language",
	"output-dir":  "output.dir",
	"format":      "output.format",
	"compress":    "output.compress",
	"cookies":     "douban.cookies",
	"base-url":    "douban.base_url",
	"sort":        "crawl.sort",
	"status":      "crawl.statuses",
	"concurrency": "crawl.concurrency",
	"retries":     "crawl.retries",
	"no-delay":    "crawl.no_delay",
	"save-db":     "database.enabled",
	"db-type":     "database.type",
	"db-dsn":      "database.dsn",
}

// LoadConfig resolves a T from, in increasing precedence: defaults, the
// config file, the environment and flags set on cmd. A missing config file
// is not an error; an explicit configFile that cannot be read is.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, fmt.Errorf("could not read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return c, err
		}
	}

	if cmd != nil {
		flags := cmd.Flags()
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("could not decode config: %w", err)
	}
	return c, nil
}

// WriteConfigFile writes c as YAML to the user (or system) config path and
// returns the path written.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := GetConfigPath(system)
	if err != nil {
		return "", err
	}
	return path, WriteConfigFileTo(c, path)
}

// WriteConfigFileTo writes c as YAML to path, creating parent directories.
func WriteConfigFileTo[T any](c *T, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}
	// 0600: the file may hold session cookies.
	return os.WriteFile(path, data, 0o600)
}
