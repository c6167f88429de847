package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/errors"
)

// newViperInstance creates a new Viper instance with the SCOUT_ env prefix,
// key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// A .env file in the working directory is loaded first; variables already
// present in the environment win over it.
//
// Missing config files are not an error.
func Load(ctx context.Context) (*Config, error) {
	loadDotEnv(ctx, ".env")

	v := newViperInstance()

	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}
	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	cfg, err := unmarshalAndValidate(v)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("storage.backend", cfg.Storage.Backend).
		Str("server.addr", cfg.Server.Addr).
		Str("backend.url", cfg.Backend.URL).
		Dur("tick.interval", cfg.Tick.Interval).
		Msg("configuration loaded")

	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is silently ignored.
func loadDotEnv(ctx context.Context, path string) {
	if !fileExists(path) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to load env file")
	}
}

// loadGlobalConfig attempts to load the global config file (~/.scout/config.yaml).
// Returns nil if the file doesn't exist or home directory cannot be determined.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, err := GlobalConfigPath()
	if err != nil || !fileExists(globalConfigPath) {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// loadProjectConfig attempts to load the project config file (.scout/config.yaml).
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides.
// Only non-zero values in overrides are applied.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}
	return applyAndValidate(cfg, overrides)
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level. Environment variables still
// apply on top.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

func applyAndValidate(cfg, overrides *Config) (*Config, error) {
	if overrides != nil {
		applyOverrides(cfg, overrides)
	}
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

// applyOverrides merges non-zero override values into the config.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Storage.Backend != "" {
		cfg.Storage.Backend = overrides.Storage.Backend
	}
	if overrides.Storage.Dir != "" {
		cfg.Storage.Dir = overrides.Storage.Dir
	}
	if overrides.Storage.Redis.Addr != "" {
		cfg.Storage.Redis.Addr = overrides.Storage.Redis.Addr
	}
	if overrides.Server.Addr != "" {
		cfg.Server.Addr = overrides.Server.Addr
	}
	if overrides.Backend.URL != "" {
		cfg.Backend.URL = overrides.Backend.URL
	}
	if overrides.Backend.Timeout != 0 {
		cfg.Backend.Timeout = overrides.Backend.Timeout
	}
	if overrides.Tick.Interval != 0 {
		cfg.Tick.Interval = overrides.Tick.Interval
	}
	if overrides.History.Path != "" {
		cfg.History.Path = overrides.History.Path
	}
}

// viperDecoderOption configures mapstructure to decode durations from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
