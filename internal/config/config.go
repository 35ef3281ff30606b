// Package config loads the aggregator credentials and the configured bank
// connections from a config file, the environment and .env files.
package config

import (
	stderrors "errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dogmatic69/nordigen-ha-lib/pkg/balances"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/constants"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/errors"
	"github.com/dogmatic69/nordigen-ha-lib/pkg/reconcile"
)

// RequisitionConfig is one configured bank connection.
type RequisitionConfig struct {
	EndUserID     string   `mapstructure:"enduser_id" yaml:"enduser_id"`
	InstitutionID string   `mapstructure:"institution_id" yaml:"institution_id"`
	Ignore        []string `mapstructure:"ignore" yaml:"ignore,omitempty"`
	RefreshRate   int      `mapstructure:"refresh_rate" yaml:"refresh_rate,omitempty"`
	BalanceTypes  []string `mapstructure:"balance_types" yaml:"balance_types,omitempty"`
}

// Intent converts the entry into the engine's input.
func (r RequisitionConfig) Intent() reconcile.Intent {
	rate := r.RefreshRate
	if rate == 0 {
		rate = constants.DefaultRefreshRate
	}
	return reconcile.Intent{
		InstitutionID: r.InstitutionID,
		EndUserID:     r.EndUserID,
		Ignore:        append([]string{}, r.Ignore...),
		RefreshRate:   rate,
		BalanceTypes:  append([]string{}, r.BalanceTypes...),
	}
}

// Config holds the loaded configuration.
type Config struct {
	SecretID     string              `mapstructure:"secret_id"`
	SecretKey    string              `mapstructure:"secret_key"`
	BaseURL      string              `mapstructure:"base_url"`
	RedirectURL  string              `mapstructure:"redirect_url"`
	Debug        bool                `mapstructure:"debug"`
	Requisitions []RequisitionConfig `mapstructure:"requisitions"`

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// Load reads configuration in order of precedence:
// 1. Environment variables (NORDIGEN_SECRET_ID, ...)
// 2. .env files
// 3. Config file (file, or ~/.nordigen.yaml / ./.nordigen.yaml)
// 4. Defaults
//
// A missing default config file is not an error; a missing explicit one is.
func Load(file string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", constants.DefaultBaseURL)
	v.SetDefault("redirect_url", constants.DefaultRedirectURI)
	v.SetDefault("debug", false)
	for _, key := range []string{"secret_id", "secret_key"} {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.NewConfigError("env", "unable to bind "+key, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("file", "unable to read config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("file", "unable to decode config", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	return &cfg, nil
}

// Validate checks credentials and every configured connection.
func (c *Config) Validate() error {
	if c.SecretID == "" {
		return errors.WrapValidation("secret_id", errors.ErrCredentialsRequired)
	}
	if c.SecretKey == "" {
		return errors.WrapValidation("secret_key", errors.ErrCredentialsRequired)
	}
	for field, raw := range map[string]string{"base_url": c.BaseURL, "redirect_url": c.RedirectURL} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return errors.NewValidationError(field, raw, "must be an absolute URL")
		}
	}

	seen := make(map[string]bool, len(c.Requisitions))
	for i, r := range c.Requisitions {
		field := fmt.Sprintf("requisitions[%d]", i)
		if r.EndUserID == "" {
			return errors.NewValidationError(field+".enduser_id", r.EndUserID, "is required")
		}
		if r.InstitutionID == "" {
			return errors.NewValidationError(field+".institution_id", r.InstitutionID, "is required")
		}
		if r.RefreshRate != 0 && r.RefreshRate < constants.MinRefreshRate {
			return errors.NewValidationError(field+".refresh_rate", r.RefreshRate,
				fmt.Sprintf("must be at least %d minute", constants.MinRefreshRate))
		}
		if _, err := balances.ParseTypes(r.BalanceTypes); err != nil {
			return errors.WrapValidation(field+".balance_types", err)
		}

		ref := reconcile.Reference(r.EndUserID, r.InstitutionID)
		if seen[ref] {
			return errors.NewValidationError(field, ref, "reference is configured more than once")
		}
		seen[ref] = true
	}
	return nil
}

// Intents returns the configured connections in order.
func (c *Config) Intents() []reconcile.Intent {
	intents := make([]reconcile.Intent, 0, len(c.Requisitions))
	for _, r := range c.Requisitions {
		intents = append(intents, r.Intent())
	}
	return intents
}

// IntentFor finds the connection whose reference matches.
func (c *Config) IntentFor(reference string) (reconcile.Intent, bool) {
	for _, r := range c.Requisitions {
		if reconcile.Reference(r.EndUserID, r.InstitutionID) == reference {
			return r.Intent(), true
		}
	}
	return reconcile.Intent{}, false
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set are never overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
