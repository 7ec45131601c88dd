package rental

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the console needs to reach the API and keep its
// local state.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	DataDir     string        `mapstructure:"data_dir"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
}

// LoadConfig reads config.yaml (working dir or parent) plus environment
// overrides. A .env file, if present, is loaded first.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("base_url", "http://localhost:8080/api")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("http_timeout", 15*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("base_url", "BASE_URL")
	_ = v.BindEnv("data_dir", "DATA_DIR")
	_ = v.BindEnv("http_timeout", "HTTP_TIMEOUT")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		return Config{}, fmt.Errorf("config: base_url/BASE_URL required")
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 15 * time.Second
	}
	return c, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rental-admin"
	}
	return filepath.Join(home, ".rental-admin")
}

func (c Config) String() string {
	return fmt.Sprintf("Config{BaseURL: %s, DataDir: %s, HTTPTimeout: %s}", c.BaseURL, c.DataDir, c.HTTPTimeout)
}
