/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the banking service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours  int    `mapstructure:"JWT_EXPIRY_HOURS"`
	DraftKeyPrefix  string `mapstructure:"DRAFT_KEY_PREFIX"`
	DraftTTLMinutes int    `mapstructure:"DRAFT_TTL_MINUTES"`

	MinLoanAmount          string `mapstructure:"MIN_LOAN_AMOUNT"`
	MaxLoanAmount          string `mapstructure:"MAX_LOAN_AMOUNT"`
	DepositPercent         string `mapstructure:"DEPOSIT_PERCENT"`
	TransferFee            string `mapstructure:"TRANSFER_FEE"`
	RequireVerifiedDeposit bool   `mapstructure:"REQUIRE_VERIFIED_DEPOSIT"`

	S3Endpoint      string `mapstructure:"S3_ENDPOINT"`
	S3Region        string `mapstructure:"S3_REGION"`
	S3AccessKeyID   string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3Bucket        string `mapstructure:"S3_BUCKET"`
	S3PublicBaseURL string `mapstructure:"S3_PUBLIC_BASE_URL"`
	S3UsePathStyle  bool   `mapstructure:"S3_USE_PATH_STYLE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("DRAFT_KEY_PREFIX", "trustbank:loan_draft")
	viper.SetDefault("DRAFT_TTL_MINUTES", 30)
	viper.SetDefault("MIN_LOAN_AMOUNT", "100")
	viper.SetDefault("MAX_LOAN_AMOUNT", "100000")
	viper.SetDefault("DEPOSIT_PERCENT", "10")
	viper.SetDefault("TRANSFER_FEE", "0")
	viper.SetDefault("REQUIRE_VERIFIED_DEPOSIT", false)
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_BUCKET", "trustbank-documents")
	viper.SetDefault("S3_USE_PATH_STYLE", true)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_EXPIRY_HOURS")
	_ = viper.BindEnv("DRAFT_KEY_PREFIX")
	_ = viper.BindEnv("DRAFT_TTL_MINUTES")
	_ = viper.BindEnv("MIN_LOAN_AMOUNT")
	_ = viper.BindEnv("MAX_LOAN_AMOUNT")
	_ = viper.BindEnv("DEPOSIT_PERCENT")
	_ = viper.BindEnv("TRANSFER_FEE")
	_ = viper.BindEnv("REQUIRE_VERIFIED_DEPOSIT")
	_ = viper.BindEnv("S3_ENDPOINT")
	_ = viper.BindEnv("S3_REGION")
	_ = viper.BindEnv("S3_ACCESS_KEY_ID")
	_ = viper.BindEnv("S3_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("S3_BUCKET")
	_ = viper.BindEnv("S3_PUBLIC_BASE_URL")
	_ = viper.BindEnv("S3_USE_PATH_STYLE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.DraftKeyPrefix = strings.TrimSpace(config.DraftKeyPrefix)
	if config.DraftKeyPrefix == "" {
		config.DraftKeyPrefix = "trustbank:loan_draft"
	}
	if config.JWTExpiryHours <= 0 {
		config.JWTExpiryHours = 24
	}
	if config.DraftTTLMinutes <= 0 {
		config.DraftTTLMinutes = 30
	}

	return
}
