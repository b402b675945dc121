// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"fmt"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Language string         `mapstructure:"language" yaml:"language"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Douban   DoubanConfig   `mapstructure:"douban" yaml:"douban"`
	Crawl    CrawlConfig    `mapstructure:"crawl" yaml:"crawl"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
}

// OutputConfig controls exported files.
type OutputConfig struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Format   string `mapstructure:"format" yaml:"format"`
	Compress string `mapstructure:"compress" yaml:"compress"`
}

// DoubanConfig holds the session settings.
type DoubanConfig struct {
	Cookies   string `mapstructure:"cookies" yaml:"cookies"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// CrawlConfig tunes paging, throttling and retries.
type CrawlConfig struct {
	Sort           string        `mapstructure:"sort" yaml:"sort"`
	AnonymousLimit int           `mapstructure:"anonymous_limit" yaml:"anonymous_limit"`
	DelayMin       time.Duration `mapstructure:"delay_min" yaml:"delay_min"`
	DelayMax       time.Duration `mapstructure:"delay_max" yaml:"delay_max"`
	NoDelay        bool          `mapstructure:"no_delay" yaml:"no_delay"`
	Retries        int           `mapstructure:"retries" yaml:"retries"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	Statuses       []string      `mapstructure:"statuses" yaml:"statuses"`
}

// DatabaseConfig selects the optional comment store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Type    string `mapstructure:"type" yaml:"type"`
	Dsn     string `mapstructure:"dsn" yaml:"dsn"`
}

// Defaults returns the default value for every config key.
func Defaults() map[string]any {
	return map[string]any{
		"language":              "zh",
		"output.dir":            "./output",
		"output.format":         "csv",
		"output.compress":       "none",
		"douban.cookies":        "",
		"douban.base_url":       "https://book.douban.com",
		"douban.user_agent":     "",
		"crawl.sort":            "score",
		"crawl.anonymous_limit": 100,
		"crawl.delay_min":       "500ms",
		"crawl.delay_max":       "2s",
		"crawl.no_delay":        false,
		"crawl.retries":         3,
		"crawl.timeout":         "30s",
		"crawl.concurrency":     1,
		"crawl.statuses":        []string{"P", "N", "F"},
		"database.enabled":      false,
		"database.type":         "sqlite",
		"database.dsn":          "./douban-comment.db",
	}
}

// Validate checks values that cannot be repaired silently.
func (c *Config) Validate() error {
	if c.Crawl.DelayMin < 0 || c.Crawl.DelayMax < 0 {
		return fmt.Errorf("crawl delays must not be negative")
	}
	if c.Crawl.Concurrency < 1 {
		c.Crawl.Concurrency = 1
	}
	if c.Crawl.Retries < 0 {
		c.Crawl.Retries = 0
	}
	if c.Crawl.AnonymousLimit < 0 {
		return fmt.Errorf("crawl.anonymous_limit must not be negative")
	}
	return nil
}
