package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// Fiat provider (Pretium)
	PretiumAPIKey  string
	PretiumBaseURL string

	// Price oracle (Panora)
	PanoraAPIKey  string
	PanoraBaseURL string

	// Chain access
	AptosFullnodeURL  string
	AptosNetwork      string
	TumaContract      string
	ChainPrivateKey   string
	OnRampCallbackURL string
	OffRampCallback   string

	// Catalog and messaging
	CatalogPath string
	AMQPURL     string

	WebhookRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if
// present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("PRETIUM_API_KEY", "")
	viper.SetDefault("PRETIUM_BASE_URL", "https://api.xwift.africa/v1")
	viper.SetDefault("PANORA_API_KEY", "")
	viper.SetDefault("PANORA_BASE_URL", "https://api.panora.exchange")
	viper.SetDefault("APTOS_FULLNODE_URL", "https://fullnode.testnet.aptoslabs.com")
	viper.SetDefault("APTOS_NETWORK", "testnet")
	viper.SetDefault("TUMA_CONTRACT_ADDRESS", "")
	viper.SetDefault("CHAIN_PRIVATE_KEY", "")
	viper.SetDefault("ON_RAMP_CALLBACK_URL", "")
	viper.SetDefault("OFF_RAMP_CALLBACK_URL", "")
	viper.SetDefault("CATALOG_PATH", "")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "60-M")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:       viper.GetString("PGSQL_URL"),
		Port:              viper.GetString("PORT"),
		IsProduction:      viper.GetBool("IS_PRODUCTION"),
		PretiumAPIKey:     viper.GetString("PRETIUM_API_KEY"),
		PretiumBaseURL:    viper.GetString("PRETIUM_BASE_URL"),
		PanoraAPIKey:      viper.GetString("PANORA_API_KEY"),
		PanoraBaseURL:     viper.GetString("PANORA_BASE_URL"),
		AptosFullnodeURL:  viper.GetString("APTOS_FULLNODE_URL"),
		AptosNetwork:      viper.GetString("APTOS_NETWORK"),
		TumaContract:      viper.GetString("TUMA_CONTRACT_ADDRESS"),
		ChainPrivateKey:   viper.GetString("CHAIN_PRIVATE_KEY"),
		OnRampCallbackURL: viper.GetString("ON_RAMP_CALLBACK_URL"),
		OffRampCallback:   viper.GetString("OFF_RAMP_CALLBACK_URL"),
		CatalogPath:       viper.GetString("CATALOG_PATH"),
		AMQPURL:           viper.GetString("AMQP_URL"),
		WebhookRateLimit:  viper.GetString("WEBHOOK_RATE_LIMIT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.TumaContract == "" {
		log.Println("Warning: TUMA_CONTRACT_ADDRESS not set. Chain settlement will not function.")
	}
	if cfg.ChainPrivateKey == "" {
		log.Println("Warning: CHAIN_PRIVATE_KEY not set. Chain settlement will not function.")
	}
	if cfg.PretiumAPIKey == "" {
		log.Println("Warning: PRETIUM_API_KEY not set. Fiat rails will not function.")
	}

	return cfg, nil
}
