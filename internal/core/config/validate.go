package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty, isDirectoryOrNotExist),
		c.validateDatabase(),
		c.validateServer(),
		c.validateClient(),
		c.validateActivity(),
	)
}

// ValidateServe adds the checks only the API server needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return criterio.Run("server.token_secret", c.Server.TokenSecret, minLength(MinTokenSecretLength))
}

func (c *Config) validateDatabase() error {
	var errs criterio.FieldErrorsBuilder
	if c.Database.MaxOpenConns < 1 {
		errs = errs.Append("database.max_open_conns", fmt.Errorf("must be at least 1"))
	}
	if c.Database.MaxIdleConns < 0 {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not be negative"))
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = errs.Append("database.max_idle_conns", fmt.Errorf("must not exceed max_open_conns"))
	}
	if c.Database.BusyTimeout < 0 {
		errs = errs.Append("database.busy_timeout", fmt.Errorf("must not be negative"))
	}
	return errs.ToError()
}

func (c *Config) validateServer() error {
	return criterio.ValidateStruct(
		criterio.Run("server.addr", c.Server.Addr, notEmpty),
		criterio.Run("server.token_ttl", c.Server.TokenTTL, positive),
		criterio.Run("server.read_timeout", c.Server.ReadTimeout, positive),
		criterio.Run("server.write_timeout", c.Server.WriteTimeout, positive),
	)
}

func (c *Config) validateClient() error {
	return criterio.ValidateStruct(
		criterio.Run("client.base_url", c.Client.BaseURL, httpURL),
		criterio.Run("client.timeout", c.Client.Timeout, positive),
	)
}

func (c *Config) validateActivity() error {
	return criterio.ValidateStruct(
		criterio.Run("activity.dedup_window", c.Activity.DedupWindow, positive),
		criterio.Run("activity.edit_threshold", c.Activity.EditThreshold, positive),
	)
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

func positive(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", d)
	}
	return nil
}

// httpURL accepts an empty value (local mode) or an absolute http(s) URL.
func httpURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
