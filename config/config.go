// Package config loads service watcher settings from a file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Swind/service-watcher/watcher"
)

// EnvPrefix prefixes every environment override, e.g. SERVICEWATCHER_SAMPLER_INTERVAL.
const EnvPrefix = "SERVICEWATCHER"

type Config struct {
	Sampler SamplerConfig `mapstructure:"sampler"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type SamplerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type WatcherConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	IndicatorID  int           `mapstructure:"indicator_id"`
	WaitingTitle string        `mapstructure:"waiting_title"`
	WaitingText  string        `mapstructure:"waiting_text"`
	QueueOrder   string        `mapstructure:"queue_order"`
}

type LoggerConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

var (
	ErrInvalidSampleInterval = errors.New("config: sampler.interval must be positive")
	ErrInvalidWaitInterval   = errors.New("config: watcher.interval must be positive")
)

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Sampler: SamplerConfig{Interval: watcher.DefaultSampleInterval},
		Watcher: WatcherConfig{
			Interval:     watcher.DefaultWaitInterval,
			IndicatorID:  watcher.DefaultIndicatorID,
			WaitingTitle: watcher.DefaultWaitingTitle,
			WaitingText:  watcher.DefaultWaitingText,
			QueueOrder:   watcher.LIFO.String(),
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "console",
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sampler.interval", d.Sampler.Interval)
	v.SetDefault("watcher.interval", d.Watcher.Interval)
	v.SetDefault("watcher.indicator_id", d.Watcher.IndicatorID)
	v.SetDefault("watcher.waiting_title", d.Watcher.WaitingTitle)
	v.SetDefault("watcher.waiting_text", d.Watcher.WaitingText)
	v.SetDefault("watcher.queue_order", d.Watcher.QueueOrder)
	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.encoding", d.Logger.Encoding)
	v.SetDefault("logger.output_paths", d.Logger.OutputPaths)
	v.SetDefault("logger.error_output_paths", d.Logger.ErrorOutputPaths)
}

// Load reads the file at path (YAML, TOML or JSON by extension) and applies
// SERVICEWATCHER_* environment overrides on top. An empty path loads
// defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Sampler.Interval <= 0 {
		return ErrInvalidSampleInterval
	}
	if c.Watcher.Interval <= 0 {
		return ErrInvalidWaitInterval
	}
	if _, err := watcher.ParseQueueOrder(c.Watcher.QueueOrder); err != nil {
		return fmt.Errorf("config: watcher.queue_order: %w", err)
	}
	return nil
}

// Options converts the settings into watcher options. Logger and metrics
// are wired separately by the caller.
func (c *Config) Options() ([]watcher.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	order, _ := watcher.ParseQueueOrder(c.Watcher.QueueOrder)
	opts := []watcher.Option{
		watcher.WithSampleInterval(c.Sampler.Interval),
		watcher.WithWaitInterval(c.Watcher.Interval),
		watcher.WithQueueOrder(order),
	}
	if c.Watcher.IndicatorID != 0 {
		opts = append(opts, watcher.WithIndicatorID(c.Watcher.IndicatorID))
	}
	if c.Watcher.WaitingTitle != "" || c.Watcher.WaitingText != "" {
		opts = append(opts, watcher.WithWaitingText(c.Watcher.WaitingTitle, c.Watcher.WaitingText))
	}
	return opts, nil
}
