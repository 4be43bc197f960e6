package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDiscogs()
	c.normalizeSKU()
	c.normalizeBatch()
	c.normalizePricing()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("BYEBYE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeDiscogs() {
	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	if c.Discogs.Token == "" {
		if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok {
			c.Discogs.Token = strings.TrimSpace(value)
		}
	}
	c.Discogs.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.APIBaseURL), "/")
	if c.Discogs.APIBaseURL == "" {
		c.Discogs.APIBaseURL = defaultDiscogsAPIBaseURL
	}
	c.Discogs.WebBaseURL = strings.TrimRight(strings.TrimSpace(c.Discogs.WebBaseURL), "/")
	if c.Discogs.WebBaseURL == "" {
		c.Discogs.WebBaseURL = defaultDiscogsWebBaseURL
	}
	c.Discogs.UserAgent = strings.TrimSpace(c.Discogs.UserAgent)
	if c.Discogs.UserAgent == "" {
		c.Discogs.UserAgent = defaultDiscogsUserAgent
	}
	c.Discogs.AcceptLanguage = strings.TrimSpace(c.Discogs.AcceptLanguage)
	if c.Discogs.AcceptLanguage == "" {
		c.Discogs.AcceptLanguage = defaultDiscogsLanguage
	}
	if c.Discogs.RequestsPerMinute < 0 {
		c.Discogs.RequestsPerMinute = 0
	}
	if c.Discogs.TimeoutSeconds < 0 {
		c.Discogs.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeSKU() {
	c.SKU.Prefix = strings.ToUpper(strings.TrimSpace(c.SKU.Prefix))
	if c.SKU.Prefix == "" {
		c.SKU.Prefix = defaultSKUPrefix
	}
}

func (c *Config) normalizeBatch() {
	if c.Batch.DelayMillis < 0 {
		c.Batch.DelayMillis = 0
	}
}

func (c *Config) normalizePricing() {
	if c.Pricing.USDToJPY <= 0 {
		c.Pricing.USDToJPY = defaultUSDToJPY
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("BYEBYE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
