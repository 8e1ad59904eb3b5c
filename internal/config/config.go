// Package config loads server and playback settings from defaults, an optional
// council.yaml, a .env file and COUNCIL_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/qiqi-070707/council-ai/internal/services"
)

const EnvPrefix = "COUNCIL"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// SessionTTL is how long a session without viewers is kept. Zero keeps
	// sessions forever.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type GeminiConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	TextModel  string        `mapstructure:"text_model"`
	ImageModel string        `mapstructure:"image_model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type ProxyConfig struct {
	Addr string `mapstructure:"addr"`
}

// PlaybackConfig holds the replay pacing. Only the shape (base plus per
// character, then a pause) is fixed; the values are tunable.
type PlaybackConfig struct {
	BaseDelay    time.Duration `mapstructure:"base_delay"`
	PerCharDelay time.Duration `mapstructure:"per_char_delay"`
	Pause        time.Duration `mapstructure:"pause"`
	TypingTick   time.Duration `mapstructure:"typing_tick"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := services.DefaultPacing()
	return &Config{
		Server: ServerConfig{Addr: ":3000", SessionTTL: 2 * time.Hour},
		Gemini: GeminiConfig{
			BaseURL:    services.DefaultGeminiBaseURL,
			TextModel:  services.DefaultGeminiTextModel,
			ImageModel: services.DefaultGeminiImageModel,
			Timeout:    3 * time.Minute,
		},
		Playback: PlaybackConfig{
			BaseDelay:    p.Base,
			PerCharDelay: p.PerChar,
			Pause:        p.Pause,
			TypingTick:   p.TypingTick,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)

	v.SetDefault("gemini.api_key", d.Gemini.APIKey)
	v.SetDefault("gemini.base_url", d.Gemini.BaseURL)
	v.SetDefault("gemini.text_model", d.Gemini.TextModel)
	v.SetDefault("gemini.image_model", d.Gemini.ImageModel)
	v.SetDefault("gemini.timeout", d.Gemini.Timeout)

	v.SetDefault("proxy.addr", d.Proxy.Addr)

	v.SetDefault("playback.base_delay", d.Playback.BaseDelay)
	v.SetDefault("playback.per_char_delay", d.Playback.PerCharDelay)
	v.SetDefault("playback.pause", d.Playback.Pause)
	v.SetDefault("playback.typing_tick", d.Playback.TypingTick)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
}

// New prepares a viper instance. configFile may be empty, in which case
// ./council.yaml is used when present. Variables from .env are loaded into the
// process environment first; a missing .env is not an error.
func New(configFile string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY")
	_ = v.BindEnv("proxy.addr", EnvPrefix+"_PROXY_ADDR", "ALL_PROXY", "all_proxy", "HTTPS_PROXY", "https_proxy")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("council")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read council.yaml: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// Pacing converts the playback settings for the sequencer.
func (c *Config) Pacing() services.Pacing {
	return services.Pacing{
		Base:       c.Playback.BaseDelay,
		PerChar:    c.Playback.PerCharDelay,
		Pause:      c.Playback.Pause,
		TypingTick: c.Playback.TypingTick,
	}
}

// GeminiService converts the backend settings for the synthesis client.
func (c *Config) GeminiService() services.GeminiConfig {
	return services.GeminiConfig{
		APIKey:     c.Gemini.APIKey,
		BaseURL:    c.Gemini.BaseURL,
		TextModel:  c.Gemini.TextModel,
		ImageModel: c.Gemini.ImageModel,
	}
}
