package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/semmidev/ckptsync/internal/domain"
)

// ErrMissing is returned by Load when the configuration file does not exist
// or cannot be read.
var ErrMissing = errors.New("configuration missing")

const envPrefix = "CKPTSYNC"

var envKeyReplacer = strings.NewReplacer(".", "_")

// requiredKeys must be present in the file or the environment; a default is
// not enough.
var requiredKeys = []string{"uploader.bot", "uploader.bot_sleep"}

const (
	UploadPolicyAbort    = "abort"
	UploadPolicyContinue = "continue"
)

const (
	StorageS3    = "s3"
	StorageMinio = "minio"
	StorageLocal = "local"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Uploader UploaderConfig `mapstructure:"uploader"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

type AppConfig struct {
	Name          string `mapstructure:"name"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
}

type UploaderConfig struct {
	LocalPath    string `mapstructure:"local_path"`
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Bot          bool   `mapstructure:"bot"`
	BotSleep     int    `mapstructure:"bot_sleep"` // minutes
	StopOnError  bool   `mapstructure:"stop_on_error"`
	UploadPolicy string `mapstructure:"upload_policy"`
}

type StorageConfig struct {
	Type           string `mapstructure:"type"`
	Region         string `mapstructure:"region"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	// local backend only
	LocalRoot string `mapstructure:"local_root"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissing, path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: failed to read config: %w", ErrMissing, err)
	}

	for _, key := range requiredKeys {
		if !isPresent(v, key) {
			return nil, fmt.Errorf("invalid config: %s is required", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Uploader.Prefix = domain.CleanPrefix(cfg.Uploader.Prefix)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func isPresent(v *viper.Viper, key string) bool {
	if v.InConfig(key) {
		return true
	}
	_, ok := os.LookupEnv(envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(key)))
	return ok
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ckptsync")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_file", "")
	v.SetDefault("app.log_max_size_mb", 100)
	v.SetDefault("app.log_max_backups", 3)
	v.SetDefault("app.log_max_age_days", 28)

	v.SetDefault("uploader.local_path", "")
	v.SetDefault("uploader.bucket", "")
	v.SetDefault("uploader.prefix", "")
	v.SetDefault("uploader.bot", false)
	v.SetDefault("uploader.bot_sleep", 0)
	v.SetDefault("uploader.stop_on_error", false)
	v.SetDefault("uploader.upload_policy", UploadPolicyAbort)

	v.SetDefault("storage.type", StorageS3)
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.force_path_style", false)
	v.SetDefault("storage.local_root", "")

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", "")
}

func (c *Config) Validate() error {
	if c.Uploader.LocalPath == "" {
		return fmt.Errorf("uploader.local_path is required")
	}
	if c.Uploader.Bucket == "" {
		return fmt.Errorf("uploader.bucket is required")
	}
	// An empty prefix would scope the delete step to the whole bucket.
	if domain.CleanPrefix(c.Uploader.Prefix) == "" {
		return fmt.Errorf("uploader.prefix is required")
	}
	if c.Uploader.Bot && c.Uploader.BotSleep <= 0 {
		return fmt.Errorf("uploader.bot_sleep must be positive when bot is enabled")
	}

	switch c.Uploader.UploadPolicy {
	case UploadPolicyAbort, UploadPolicyContinue:
	default:
		return fmt.Errorf("uploader.upload_policy: unknown policy %q", c.Uploader.UploadPolicy)
	}

	switch c.Storage.Type {
	case StorageS3:
	case StorageMinio:
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("storage.endpoint is required for minio")
		}
	case StorageLocal:
		if c.Storage.LocalRoot == "" {
			return fmt.Errorf("storage.local_root is required for local storage")
		}
	default:
		return fmt.Errorf("storage.type: unknown type %q", c.Storage.Type)
	}

	if c.Storage.AccessKey != "" && c.Storage.SecretKey == "" {
		return fmt.Errorf("storage.secret_key is required when access_key is set")
	}

	if t := c.Notify.Telegram; t.Enabled && (t.BotToken == "" || t.ChatID == "") {
		return fmt.Errorf("notify.telegram: bot_token and chat_id are required when enabled")
	}

	return nil
}

func (c *Config) ContinueOnUploadError() bool {
	return c.Uploader.UploadPolicy == UploadPolicyContinue
}

func (c *Config) BotInterval() time.Duration {
	return time.Duration(c.Uploader.BotSleep) * time.Minute
}
