package config

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/bytes"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "stackvm"

// Config is read from the config file, the environment and the command
// line, in increasing order of precedence.
type Config struct {
	Log   LogConfig   `mapstructure:"log"`
	VM    VMConfig    `mapstructure:"vm"`
	API   APIConfig   `mapstructure:"api"`
	Store StoreConfig `mapstructure:"store"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type VMConfig struct {
	MaxStack int `mapstructure:"max_stack"`
}

type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	// request body limit, e.g. "512K" or "1M"
	MaxBody string `mapstructure:"max_body"`
}

type StoreConfig struct {
	// 0 keeps every receipt
	Size int `mapstructure:"size"`
}

func (c Config) String() string {
	return fmt.Sprintf("log: %s vm.max_stack: %d api: %s api.max_body: %s store.size: %d",
		c.Log.Level, c.VM.MaxStack, c.API.ListenAddr, c.API.MaxBody, c.Store.Size)
}

// SetDefaults registers the default of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("vm.max_stack", 1024)
	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.max_body", "1M")
	v.SetDefault("store.size", 256)
}

// Load reads cfgFile, if given, and the STACKVM_ environment into v and
// unmarshals the result.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.VM.MaxStack <= 0 {
		return fmt.Errorf("vm.max_stack must be positive, got %d", c.VM.MaxStack)
	}
	if _, err := bytes.Parse(c.API.MaxBody); err != nil {
		return fmt.Errorf("api.max_body: %w", err)
	}
	if c.Store.Size < 0 {
		return fmt.Errorf("store.size must not be negative, got %d", c.Store.Size)
	}
	return nil
}

// NewLogger builds a development logger for debug level and a production
// logger otherwise.
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
