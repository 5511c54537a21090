package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/team-gbm/hophacks-2025-backend/internal/store"
)

const (
	envPrefix          = "HOPHACKS"
	defaultAddr        = ":8080"
	defaultCORSOrigins = "http://localhost:3000"
	defaultModel       = "gemini-1.5-flash"
	defaultRegion      = "us-east-1"
)

// Config is filled from, in increasing priority: defaults, the optional TOML file,
// environment variables and command-line flags.
type Config struct {
	Addr        string       `mapstructure:"addr"`
	Port        string       `mapstructure:"port"`
	LogLevel    string       `mapstructure:"log_level"`
	CORSOrigins string       `mapstructure:"cors_origins"`
	Store       store.Config `mapstructure:"store"`
	Redis       RedisConfig  `mapstructure:"redis"`
	AI          AIConfig     `mapstructure:"ai"`
	Media       MediaConfig  `mapstructure:"media"`
}

// RedisConfig enables cross-instance chat fan-out. An empty Addr keeps fan-out local.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AIConfig configures the generative-AI provider. The API key is only ever read from
// the environment or the config file.
type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MediaConfig configures presigned uploads. An empty Bucket disables them.
type MediaConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

// legacyEnv maps config keys to the bare variable names used by earlier deployments.
var legacyEnv = map[string]string{
	"port":           "PORT",
	"cors_origins":   "CORS_ORIGINS",
	"store.uri":      "MONGODB_URI",
	"store.database": "MONGODB_DB",
	"redis.addr":     "REDIS_ADDR",
	"ai.api_key":     "GEMINI_API_KEY",
	"media.bucket":   "S3_BUCKET_NAME",
	"media.region":   "AWS_REGION",
}

func GetFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("configuration", pflag.ContinueOnError)
	flagSet.StringP("config", "c", "", "path to a TOML config file")
	flagSet.String("addr", "", "http service address")
	flagSet.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flagSet.String("store-driver", "", "document store driver (mongo, postgres, memory, bunt)")
	flagSet.String("store-uri", "", "document store connection string")
	return flagSet
}

// Load parses args and reads the configuration.
func Load(args []string) (*Config, error) {
	flagSet := GetFlagSet()
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	return Read(flagSet)
}

// Read builds the configuration from an already parsed flag set.
func Read(flagSet *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("port", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_origins", defaultCORSOrigins)
	v.SetDefault("store.driver", store.DriverMongo)
	v.SetDefault("store.uri", store.DefaultURI)
	v.SetDefault("store.database", store.DefaultDatabase)
	v.SetDefault("store.path", "data/hophacks.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", defaultModel)
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.region", defaultRegion)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, err
		}
	}

	flagKeys := map[string]string{
		"addr":         "addr",
		"log-level":    "log_level",
		"store-driver": "store.driver",
		"store-uri":    "store.uri",
	}
	for name, key := range flagKeys {
		if f := flagSet.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if path, _ := flagSet.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if cfg.Port != "" && !flagSet.Changed("addr") {
		cfg.Addr = ":" + cfg.Port
	}
	return cfg, nil
}

// Origins splits the comma-separated CORS origin list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
