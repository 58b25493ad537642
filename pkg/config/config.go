package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// ServerConfig holds the chat backend endpoint configuration
type ServerConfig struct {
	URL      string        `mapstructure:"url"`
	ChatPath string        `mapstructure:"chat_path"`
	Timeout  time.Duration `mapstructure:"timeout"` // zero means no client timeout
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	LogFile string `mapstructure:"log_file"`
	Persist bool   `mapstructure:"persist"`
	Level   string `mapstructure:"level"`
}

// UIConfig holds rendering configuration
type UIConfig struct {
	TypingIndicator string `mapstructure:"typing_indicator"`
	Highlight       bool   `mapstructure:"highlight"`
	InterruptNotice bool   `mapstructure:"interrupt_notice"`
}

var cfg *Config

// Init configures viper, reads the optional settings file and populates the
// global config. A missing settings file is not an error; defaults apply.
func Init(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./.jovian")
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.AutomaticEnv()
	viper.BindEnv("server.url", "JOVIAN_SERVER_URL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	return Load()
}

// Load re-reads the current viper state into the global config. Called after
// flag binding so command-line overrides are reflected.
func Load() error {
	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg = c
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		panic("config not initialized - call Init() first")
	}
	return cfg
}

// Set replaces the global config instance (useful for tests)
func Set(c *Config) {
	cfg = c
}

func setDefaults() {
	viper.SetDefault("server.url", "http://localhost:8000")
	viper.SetDefault("server.chat_path", "/api/chat")
	viper.SetDefault("server.timeout", time.Duration(0))

	viper.SetDefault("logging.log_file", "./.jovian/system.log")
	viper.SetDefault("logging.persist", true)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("ui.typing_indicator", "...")
	viper.SetDefault("ui.highlight", true)
	viper.SetDefault("ui.interrupt_notice", false)
}

// ChatEndpoint joins the server URL with the chat path
func (c *Config) ChatEndpoint() string {
	return c.Server.URL + c.Server.ChatPath
}
