package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/annoset/merge"
)

// Config is read from annoset.yaml, ANNOSET_* environment variables and
// command line flags, in increasing precedence.
type Config struct {
	LogLevel   string      `mapstructure:"log_level"`
	LogFormat  string      `mapstructure:"log_format"`
	Workers    int         `mapstructure:"workers"`
	IOLimit    int64       `mapstructure:"io_limit"`
	MediaCache int64       `mapstructure:"media_cache"`
	BlobCache  int64       `mapstructure:"blob_cache"`
	Merge      MergeConfig `mapstructure:"merge"`
	S3         S3Config    `mapstructure:"s3"`
	MinIO      MinIOConfig `mapstructure:"minio"`
}

// MergeConfig holds merge defaults.
type MergeConfig struct {
	Threshold float64 `mapstructure:"threshold"`
	Policy    string  `mapstructure:"policy"`
	Quorum    int     `mapstructure:"quorum"`
}

// S3Config configures s3:// locations.
type S3Config struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// MinIOConfig configures minio:// locations.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
}

// loadConfig reads the configuration. An explicit path must exist; without
// one, annoset.yaml in the working directory is optional.
func loadConfig(v *viper.Viper, path string, flags *pflag.FlagSet) (*Config, error) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("workers", 0)
	v.SetDefault("io_limit", 0)
	v.SetDefault("media_cache", 256<<20)
	v.SetDefault("blob_cache", 0)
	v.SetDefault("merge.threshold", merge.DefaultThreshold)
	v.SetDefault("merge.policy", string(merge.Union))
	v.SetDefault("merge.quorum", 0)
	v.SetDefault("minio.secure", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("annoset")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ANNOSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"log_level":  "log-level",
			"log_format": "log-format",
			"workers":    "workers",
			"io_limit":   "io-limit",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format %q: want text or json", c.LogFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d", c.Workers)
	}
	if _, err := merge.ParsePolicy(c.Merge.Policy); err != nil {
		return err
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
