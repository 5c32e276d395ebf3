package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Supported billing frequencies and settlement currencies for the price table.
var (
	PriceFrequencies = []string{"monthly", "annually", "biannually"}
	PriceCurrencies  = []string{"USD", "EUR", "BRL"}
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StripeSecretKey                  string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret              string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// PriceTable maps billing frequency -> currency -> Stripe price ID.
	// Populated from the STRIPE_PRICE_<FREQUENCY>_<CURRENCY> variables.
	PriceTable map[string]map[string]string `mapstructure:"-"`
}

// PriceID returns the configured Stripe price ID for a frequency/currency
// pair, or "" when the pair is not configured.
func (c *Config) PriceID(frequency, currency string) string {
	if c.PriceTable == nil {
		return ""
	}
	return c.PriceTable[frequency][currency]
}

// LoadConfig loads configuration from environment variables using Viper.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")

	// Bind environment variables
	viper.BindEnv("PORT")
	viper.BindEnv("GIN_MODE")
	viper.BindEnv("CLIENT_URL")
	viper.BindEnv("FIREBASE_PROJECT_ID")
	viper.BindEnv("GOOGLE_APPLICATION_CREDENTIALS")
	viper.BindEnv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
	viper.BindEnv("STRIPE_SECRET_KEY")
	viper.BindEnv("STRIPE_WEBHOOK_SECRET")
	for _, freq := range PriceFrequencies {
		for _, cur := range PriceCurrencies {
			viper.BindEnv(priceEnvKey(freq, cur))
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// The price table is a dynamic key set, so it is read directly rather
	// than through struct tags. Individual entries may be absent; the
	// checkout flow treats a missing entry as a configuration error for
	// that frequency/currency pair only.
	cfg.PriceTable = make(map[string]map[string]string, len(PriceFrequencies))
	for _, freq := range PriceFrequencies {
		cfg.PriceTable[freq] = make(map[string]string, len(PriceCurrencies))
		for _, cur := range PriceCurrencies {
			if v := viper.GetString(priceEnvKey(freq, cur)); v != "" {
				cfg.PriceTable[freq][cur] = v
			}
		}
	}

	// Validate required fields
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return nil, errors.New("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}

	return &cfg, nil
}

func priceEnvKey(frequency, currency string) string {
	return fmt.Sprintf("STRIPE_PRICE_%s_%s", strings.ToUpper(frequency), strings.ToUpper(currency))
}
