package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NatsConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type DirectoryCacheConfig struct {
	MaxEntries int64 `mapstructure:"max_entries"`
}

type GameConfig struct {
	DefaultTargetScore int                  `mapstructure:"default_target_score"`
	LogLevel           string               `mapstructure:"log_level"`
	Redis              RedisConfig          `mapstructure:"redis"`
	Nats               NatsConfig           `mapstructure:"nats"`
	Mongo              MongoConfig          `mapstructure:"mongo"`
	DirectoryCache     DirectoryCacheConfig `mapstructure:"directory_cache"`
}

// EnvPrefix prefixes environment overrides, e.g. BURAKO_REDIS_ADDR.
const EnvPrefix = "BURAKO"

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_target_score", 3000)
	v.SetDefault("log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "burako.games")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "burako")
	v.SetDefault("directory_cache.max_entries", 10000)
}

// Load reads the configuration at path (JSON or YAML, by extension) with environment
// overrides. An empty path yields the defaults plus environment.
func Load(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if c.DefaultTargetScore <= 0 {
		return nil, fmt.Errorf("default_target_score must be positive, got %d", c.DefaultTargetScore)
	}
	return &c, nil
}

// LoadGameConfig loads the global game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// TargetScore returns the configured default target, or 3000 before configuration is loaded.
func TargetScore() int {
	if cfg == nil {
		return 3000
	}
	return cfg.DefaultTargetScore
}
