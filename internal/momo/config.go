package momo

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultProduct = "collection"
	DefaultTimeout = 30 * time.Second

	TierPrimary   = "primary"
	TierSecondary = "secondary"
)

// ErrInvalidConfig wraps local validation failures. These are detected before any
// request is sent, so they are plain wrapped errors rather than *Error values.
var ErrInvalidConfig = errors.New("invalid provisioning config")

var validProducts = map[string]bool{
	"collection":   true,
	"disbursement": true,
	"remittance":   true,
}

// Config describes one target API user and the environment it is provisioned in.
// It is checked once by Validate and treated as read-only afterwards.
type Config struct {
	UserID            string            `mapstructure:"user_id"`
	SubscriptionKey   string            `mapstructure:"subscription_key"`
	BaseURL           string            `mapstructure:"base_url"`
	CallbackHost      string            `mapstructure:"callback_host"`
	TargetEnvironment string            `mapstructure:"target_environment"`
	Product           string            `mapstructure:"product"`
	Headers           map[string]string `mapstructure:"headers"`
	Timeout           time.Duration     `mapstructure:"timeout"`
}

// SubscriptionConfig holds both subscription key tiers issued for an environment.
type SubscriptionConfig struct {
	Tier      string `mapstructure:"tier"`
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
}

// Resolve returns the key for the configured tier. An empty tier means primary.
func (s SubscriptionConfig) Resolve() (string, error) {
	switch strings.ToLower(s.Tier) {
	case "", TierPrimary:
		return s.Primary, nil
	case TierSecondary:
		return s.Secondary, nil
	default:
		return "", fmt.Errorf("%w: unknown subscription tier %q", ErrInvalidConfig, s.Tier)
	}
}

// Validate normalizes the config in place and reports the first invalid field.
func (c *Config) Validate() error {
	c.UserID = strings.TrimSpace(c.UserID)
	if c.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidConfig)
	}

	if strings.TrimSpace(c.SubscriptionKey) == "" {
		return fmt.Errorf("%w: subscription key is required", ErrInvalidConfig)
	}

	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if err := validateHTTPURL(c.BaseURL); err != nil {
		return fmt.Errorf("%w: base_url: %v", ErrInvalidConfig, err)
	}

	if c.Product == "" {
		c.Product = DefaultProduct
	}
	c.Product = strings.ToLower(c.Product)
	if !validProducts[c.Product] {
		return fmt.Errorf("%w: unknown product %q", ErrInvalidConfig, c.Product)
	}

	for name := range c.Headers {
		switch http.CanonicalHeaderKey(name) {
		case headerReferenceID, headerSubscriptionKey, "Authorization", "Content-Type":
			return fmt.Errorf("%w: header %q is managed by the provisioner", ErrInvalidConfig, name)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// validateCallback is only enforced by CreateAPIUser; key and token steps don't send it.
func (c *Config) validateCallback() error {
	if strings.TrimSpace(c.CallbackHost) == "" {
		return fmt.Errorf("%w: callback_host is required to create an API user", ErrInvalidConfig)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return errors.New("is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("host is missing")
	}
	return nil
}
