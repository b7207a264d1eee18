package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    string `mapstructure:"http_port"`
	MySQLDSN    string `mapstructure:"mysql_dsn"`
	RedisAddr   string `mapstructure:"redis_addr"`
	FrontendURL string `mapstructure:"frontend_url"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SenderName   string `mapstructure:"sender_name"`
	FromAddress  string `mapstructure:"from_address"`
	CompanyInbox string `mapstructure:"company_inbox"`

	PayPalBaseURL      string `mapstructure:"paypal_base_url"`
	PayPalClientID     string `mapstructure:"paypal_client_id"`
	PayPalClientSecret string `mapstructure:"paypal_client_secret"`
}

// Load reads config.yaml from the working directory when present and
// lets STOREFRONT_* environment variables override every key.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("http_port", ":8080")
	v.SetDefault("mysql_dsn", "root:root@tcp(localhost:3306)/storefront?parseTime=true")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("kafka_topic", "storefront.orders")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("sender_name", "Funky Stitch")
	v.SetDefault("paypal_base_url", "https://api-m.sandbox.paypal.com")

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
