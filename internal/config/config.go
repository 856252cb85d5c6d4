package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "PLANNER"
	defaultHTTPAddress   = "0.0.0.0:8000"
	defaultDatabasePath  = "planner.db"
	defaultLogLevel      = "info"
	defaultAPIBaseURL    = "http://localhost:8000"
	defaultReminderCron  = "@every 1m"
	defaultUserFirstName = ""
)

// AppConfig captures runtime configuration for both planner binaries.
type AppConfig struct {
	HTTPAddress   string
	DatabasePath  string
	LogLevel      string
	APIBaseURL    string
	ReminderCron  string
	UserID        int64
	UserFirstName string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("api.base_url", defaultAPIBaseURL)
	configViper.SetDefault("reminder.cron", defaultReminderCron)
	configViper.SetDefault("user.first_name", defaultUserFirstName)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		DatabasePath:  configViper.GetString("database.path"),
		LogLevel:      configViper.GetString("log.level"),
		APIBaseURL:    configViper.GetString("api.base_url"),
		ReminderCron:  configViper.GetString("reminder.cron"),
		UserID:        configViper.GetInt64("user.id"),
		UserFirstName: configViper.GetString("user.first_name"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if strings.TrimSpace(c.ReminderCron) == "" {
		return fmt.Errorf("reminder.cron is required")
	}
	return nil
}
