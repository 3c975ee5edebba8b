package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	StaticPath   string        `mapstructure:"static_path"`
	DataPath     string        `mapstructure:"data_path"`
	Password     string        `mapstructure:"password"`
	Secret       string        `mapstructure:"secret"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	CreateLimit  int           `mapstructure:"create_limit"`
	CreateWindow time.Duration `mapstructure:"create_window"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("base_url", "")
	v.SetDefault("static_path", "./public")
	v.SetDefault("data_path", "./data/history.db")
	v.SetDefault("password", "")
	v.SetDefault("secret", "parley-cookie-secret")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("create_limit", 10)
	v.SetDefault("create_window", "5s")

	// the original deployment configures these through the environment
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("base_url", "BASE_URL")
	_ = v.BindEnv("password", "CHAT_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Data: %s\n", cfg.Mode, cfg.Port, cfg.DataPath)
	return &cfg, nil
}
