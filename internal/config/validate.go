package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
//
// A missing Discogs token is not a validation failure: inventory commands work
// without one and catalog search reports the missing credential on use.
func (c *Config) Validate() error {
	if err := c.validateDiscogs(); err != nil {
		return err
	}
	if err := c.validateSKU(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDiscogs() error {
	for key, value := range map[string]string{
		"discogs.api_base_url": c.Discogs.APIBaseURL,
		"discogs.web_base_url": c.Discogs.WebBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) url, got %q", key, value)
		}
	}
	return nil
}

func (c *Config) validateSKU() error {
	prefix := c.SKU.Prefix
	if prefix == "" {
		return errors.New("sku.prefix must be set")
	}
	for _, r := range prefix {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("sku.prefix %q must contain only letters and digits", prefix)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
