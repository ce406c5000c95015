package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"agrichain/internal/audio"
)

const envPrefix = "AGRICHAIN"

type Config struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	ParamPrefix string        `mapstructure:"param_prefix"`
	Model       string        `mapstructure:"model"`
	TTSModel    string        `mapstructure:"tts_model"`
	Voice       string        `mapstructure:"voice"`
	Language    string        `mapstructure:"language"`
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	Audio       AudioConfig   `mapstructure:"audio"`
	Store       StoreConfig   `mapstructure:"store"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	Log         LogConfig     `mapstructure:"log"`
}

type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate"`
	Channels   int `mapstructure:"channels"`
	BitDepth   int `mapstructure:"bit_depth"`
}

// Format converts the configured values to the PCM format used for voice replies.
func (a AudioConfig) Format() audio.Format {
	return audio.Format{SampleRate: a.SampleRate, Channels: a.Channels, BitDepth: a.BitDepth}
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Table      string `mapstructure:"table"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// providerDefaults fill model, tts_model and voice when they are left empty.
var providerDefaults = map[string][3]string{
	"gemini": {"gemini-2.5-flash", "gemini-2.5-flash-preview-tts", "Algenib"},
	"openai": {"gpt-4o-mini", "gpt-4o-mini-tts", "alloy"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "gemini")
	v.SetDefault("api_key", "")
	v.SetDefault("param_prefix", "")
	v.SetDefault("model", "")
	v.SetDefault("tts_model", "")
	v.SetDefault("voice", "")
	v.SetDefault("language", "Tamil")
	v.SetDefault("base_url", "")
	v.SetDefault("http_timeout", "60s")
	v.SetDefault("audio.sample_rate", 24000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.bit_depth", 16)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.sqlite_path", "agrichain.db")
	v.SetDefault("store.table", "")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the optional YAML file at path and overlays AGRICHAIN_*
// environment variables, e.g. AGRICHAIN_STORE_DRIVER for store.driver.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ParamPrefix = strings.TrimSpace(c.ParamPrefix)
	c.Language = strings.TrimSpace(c.Language)

	if d, ok := providerDefaults[c.Provider]; ok {
		if strings.TrimSpace(c.Model) == "" {
			c.Model = d[0]
		}
		if strings.TrimSpace(c.TTSModel) == "" {
			c.TTSModel = d[1]
		}
		if strings.TrimSpace(c.Voice) == "" {
			c.Voice = d[2]
		}
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, ok := providerDefaults[c.Provider]; !ok {
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.Language == "" {
		return errors.New("config: language is required")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("config: http_timeout must be positive")
	}
	if c.Audio.SampleRate <= 0 || c.Audio.Channels <= 0 {
		return errors.New("config: audio sample_rate and channels must be positive")
	}
	switch c.Audio.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("config: unsupported audio bit_depth %d", c.Audio.BitDepth)
	}
	if err := c.Audio.Format().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return errors.New("config: store.sqlite_path is required for the sqlite driver")
		}
	case "dynamodb":
		if strings.TrimSpace(c.Store.Table) == "" {
			return errors.New("config: store.table is required for the dynamodb driver")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("config: http.addr is required")
	}
	return nil
}
