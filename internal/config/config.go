package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string `mapstructure:"PORT"`
	DatabasePath string `mapstructure:"DATABASE_PATH"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
	EnableCORS   bool   `mapstructure:"ENABLE_CORS"`

	// Bootstrap superadmin, created on first start when no superadmin exists.
	BootstrapAdminEmail    string `mapstructure:"BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminPassword string `mapstructure:"BOOTSTRAP_ADMIN_PASSWORD"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	DiscordBotToken          string `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordAnnounceChannelID string `mapstructure:"DISCORD_ANNOUNCE_CHANNEL_ID"`

	// Campus single-sign-on (any OAuth2 provider with a userinfo endpoint).
	SSOClientID     string `mapstructure:"SSO_CLIENT_ID"`
	SSOClientSecret string `mapstructure:"SSO_CLIENT_SECRET"`
	SSORedirectURL  string `mapstructure:"SSO_REDIRECT_URL"`
	SSOAuthURL      string `mapstructure:"SSO_AUTH_URL"`
	SSOTokenURL     string `mapstructure:"SSO_TOKEN_URL"`
	SSOUserInfoURL  string `mapstructure:"SSO_USERINFO_URL"`

	ReminderInterval time.Duration `mapstructure:"REMINDER_INTERVAL"`
	AttachmentDir    string        `mapstructure:"ATTACHMENT_DIR"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "campus-events.db")
	viper.SetDefault("SSO_REDIRECT_URL", "http://127.0.0.1:8080/auth/sso/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:4000")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("REMINDER_INTERVAL", time.Minute)
	viper.SetDefault("ATTACHMENT_DIR", "attachments")

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("BOOTSTRAP_ADMIN_EMAIL")
	viper.BindEnv("BOOTSTRAP_ADMIN_PASSWORD")
	viper.BindEnv("SMTP_HOST")
	viper.BindEnv("SMTP_USERNAME")
	viper.BindEnv("SMTP_PASSWORD")
	viper.BindEnv("SMTP_FROM")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_ANNOUNCE_CHANNEL_ID")
	viper.BindEnv("SSO_CLIENT_ID")
	viper.BindEnv("SSO_CLIENT_SECRET")
	viper.BindEnv("SSO_AUTH_URL")
	viper.BindEnv("SSO_TOKEN_URL")
	viper.BindEnv("SSO_USERINFO_URL")
	viper.BindEnv("ENABLE_CORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
