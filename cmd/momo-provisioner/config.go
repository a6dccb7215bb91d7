package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/EternisAI/momo-provisioner/internal/api/http"
	"github.com/EternisAI/momo-provisioner/internal/momo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log  LogConfig
	Http http.Config
	Momo MomoConfig
}

type MomoConfig struct {
	UserID            string                  `mapstructure:"user_id"`
	BaseURL           string                  `mapstructure:"base_url"`
	CallbackHost      string                  `mapstructure:"callback_host"`
	TargetEnvironment string                  `mapstructure:"target_environment"`
	Product           string                  `mapstructure:"product"`
	Headers           map[string]string       `mapstructure:"headers"`
	Timeout           time.Duration           `mapstructure:"timeout"`
	Subscription      momo.SubscriptionConfig `mapstructure:"subscription"`
}

// ProvisioningConfig resolves the subscription tier and returns the config the
// provisioner is built from. Validation happens in momo.NewProvisioner.
func (m MomoConfig) ProvisioningConfig() (momo.Config, error) {
	key, err := m.Subscription.Resolve()
	if err != nil {
		return momo.Config{}, err
	}
	return momo.Config{
		UserID:            m.UserID,
		SubscriptionKey:   key,
		BaseURL:           m.BaseURL,
		CallbackHost:      m.CallbackHost,
		TargetEnvironment: m.TargetEnvironment,
		Product:           m.Product,
		Headers:           m.Headers,
		Timeout:           m.Timeout,
	}, nil
}

var config Config

// envAliases keeps the variable names used by existing .env files working.
var envAliases = map[string][]string{
	"momo.user_id":                {"MOMO_USER_ID", "UUID"},
	"momo.base_url":               {"MOMO_BASE_URL", "BASE_URL"},
	"momo.callback_host":          {"MOMO_CALLBACK_HOST", "CALLBACK_URL"},
	"momo.subscription.primary":   {"MOMO_SUBSCRIPTION_PRIMARY", "SANDBOX_PRIMARY_KEY"},
	"momo.subscription.secondary": {"MOMO_SUBSCRIPTION_SECONDARY", "SANDBOX_SECONDARY_KEY"},
	"http.admin_api_key":          {"HTTP_ADMIN_API_KEY", "ADMIN_API_KEY"},
}

func InitConfig(configFile string) error {
	cfg, err := loadConfig(viper.New(), configFile)
	if err != nil {
		return err
	}
	config = cfg

	initLogger(config.Log.Level, config.Log.Format)

	// Pretty print config as JSON (only at DEBUG level, on stderr)
	if strings.ToUpper(config.Log.Level) == LOG_LEVEL_DEBUG {
		configJSON, err := json.MarshalIndent(redacted(config), "", "  ")
		if err == nil {
			fmt.Fprintln(os.Stderr, "Config loaded:")
			fmt.Fprintln(os.Stderr, string(configJSON))
		}
	}
	return nil
}

func loadConfig(v *viper.Viper, configFile string) (Config, error) {
	_ = godotenv.Load()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("application")
		v.AddConfigPath(".")
		v.AddConfigPath("./cmd/momo-provisioner")
		v.SetConfigType("yaml")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", LOG_LEVEL_INFO)
	v.SetDefault("log.format", LOG_FORMAT_TEXT)
	v.SetDefault("http.port", 8080)
	v.SetDefault("momo.target_environment", "sandbox")
	v.SetDefault("momo.product", momo.DefaultProduct)
	v.SetDefault("momo.timeout", momo.DefaultTimeout)
	v.SetDefault("momo.subscription.tier", momo.TierPrimary)

	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func redacted(cfg Config) Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "********"
	}
	cfg.Http.AdminAPIKey = mask(cfg.Http.AdminAPIKey)
	cfg.Momo.Subscription.Primary = mask(cfg.Momo.Subscription.Primary)
	cfg.Momo.Subscription.Secondary = mask(cfg.Momo.Subscription.Secondary)
	return cfg
}
