package config

import (
	"fmt"
	"os"

	"cobrosmart/internal/ai"
)

// Config is built once at process start and passed explicitly into the
// server and handlers; nothing reads the environment after Load.
type Config struct {
	Port        string
	Environment string

	BusinessID  string
	PostgresURL string

	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIDeployment string
	AzureOpenAIAPIVersion string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	StripeAPIKeyLive string
	StripeAPIKeyTest string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENV", "development"),

		BusinessID:  getEnv("COBROSMART_BUSINESS_ID", ""),
		PostgresURL: getEnv("COBROSMART_PG_URL", ""),

		AzureOpenAIEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureOpenAIAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureOpenAIDeployment: getEnv("AZURE_OPENAI_DEPLOYMENT_NAME", ""),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-10-21"),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		StripeAPIKeyLive: getEnv("STRIPE_API_KEY_LIVE", ""),
		StripeAPIKeyTest: getEnv("STRIPE_API_KEY_TEST", "sk_test"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the values without which the process cannot run at all.
// Generation-service credentials are deliberately not required: their absence
// routes message generation to the local fallback instead of failing startup.
func (c *Config) validate() error {
	required := map[string]string{
		"COBROSMART_BUSINESS_ID": c.BusinessID,
		"COBROSMART_PG_URL":      c.PostgresURL,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing required environment variable: %s", name)
		}
	}

	return nil
}

// AI returns the generation-service client configuration.
func (c *Config) AI() ai.Config {
	return ai.Config{
		Endpoint:   c.AzureOpenAIEndpoint,
		APIKey:     c.AzureOpenAIAPIKey,
		Deployment: c.AzureOpenAIDeployment,
		APIVersion: c.AzureOpenAIAPIVersion,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
