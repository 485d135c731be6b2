// Package config loads the service configuration from defaults, an optional
// YAML file, and the environment.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Server struct {
		Port        int    `mapstructure:"port"`
		CORSOrigins string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`
	Store struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"store"`
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		Model   string `mapstructure:"model"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// LoadConfig loads the configuration from a file and the environment.
// Every key has a default and the config file is optional, so a bare
// environment boots a working server with generation disabled. Environment
// variables use the STEPGUIDE_ prefix (STEPGUIDE_SERVER_PORT and so on); the
// generation credential is also read from plain OPENAI_API_KEY because that
// is where it usually already lives.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("store.dir", "data/workflows")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("STEPGUIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{
		"server.port", "server.cors_origins", "store.dir",
		"openai.model", "openai.base_url", "log.level",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}
	if err := v.BindEnv("openai.api_key", "STEPGUIDE_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// AllowedOrigins splits the configured comma-separated origin list. "*" and
// an empty value both allow every origin.
func (c *Config) AllowedOrigins() []string {
	raw := strings.TrimSpace(c.Server.CORSOrigins)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
