package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-insights/internal/plaid"
)

// LoadPlaidConfig reads plaid.* keys, falling back to PLAID_* environment
// variables. The environment defaults to sandbox.
func LoadPlaidConfig(v *viper.Viper) (plaid.Config, error) {
	lookup := func(key, env string) string {
		if s := v.GetString(key); s != "" {
			return s
		}
		return os.Getenv(env)
	}

	cfg := plaid.Config{
		ClientID:    lookup("plaid.client_id", "PLAID_CLIENT_ID"),
		Secret:      lookup("plaid.secret", "PLAID_SECRET"),
		Environment: lookup("plaid.environment", "PLAID_ENV"),
		AccessToken: lookup("plaid.access_token", "PLAID_ACCESS_TOKEN"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
