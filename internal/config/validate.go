package config

import (
	stderrors "errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/errors"
)

//nolint:gochecknoglobals // validator caches struct metadata and is safe for concurrent use
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found,
// wrapping one of the ErrConfigInvalid* sentinels.
//
// Validation rules:
//   - struct tags (storage.backend is a known name, backend.url is a URL, ...)
//   - the redis backend needs storage.redis.addr
//   - backend.timeout and server.read_timeout must be positive
//   - tick.interval must be at least 100ms
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateTags(cfg); err != nil {
		return err
	}
	if err := validateStorageConfig(&cfg.Storage); err != nil {
		return err
	}
	if err := validateServerConfig(&cfg.Server, &cfg.Tick); err != nil {
		return err
	}
	return validateBackendConfig(&cfg.Backend)
}

// validateTags runs the struct-tag rules and maps the first failure onto the
// sentinel of the section it belongs to.
func validateTags(cfg *Config) error {
	err := structValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, "config validation failed")
	}

	fe := verrs[0]
	return errors.Wrapf(sectionSentinel(fe.Namespace()),
		"%s failed %q check (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value())
}

func sectionSentinel(namespace string) error {
	switch {
	case strings.HasPrefix(namespace, "Config.Storage"):
		return errors.ErrConfigInvalidStorage
	case strings.HasPrefix(namespace, "Config.Backend"):
		return errors.ErrConfigInvalidBackend
	default:
		return errors.ErrConfigInvalidServer
	}
}

// fieldPath turns "Config.Storage.Redis.Addr" into "storage.redis.addr".
func fieldPath(namespace string) string {
	return strings.ToLower(strings.TrimPrefix(namespace, "Config."))
}

func validateStorageConfig(cfg *StorageConfig) error {
	if cfg.Backend == BackendRedis && cfg.Redis.Addr == "" {
		return errors.Wrap(errors.ErrConfigInvalidStorage,
			"storage.redis.addr is required when storage.backend is redis")
	}
	if strings.ContainsAny(cfg.Key, `/\`) || strings.Contains(cfg.Key, "..") {
		return errors.Wrapf(errors.ErrConfigInvalidStorage,
			"storage.key %q must be a plain name", cfg.Key)
	}
	return nil
}

func validateServerConfig(server *ServerConfig, tick *TickConfig) error {
	if server.ReadTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"server.read_timeout must be positive, got %s", server.ReadTimeout)
	}
	if tick.Interval < constants.MinTickInterval {
		return errors.Wrapf(errors.ErrConfigInvalidServer,
			"tick.interval must be at least %s, got %s", constants.MinTickInterval, tick.Interval)
	}
	return nil
}

func validateBackendConfig(cfg *BackendConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidBackend,
			"backend.timeout must be positive, got %s", cfg.Timeout)
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return errors.Wrapf(errors.ErrConfigInvalidBackend,
			"backend.url must use http or https, got %q", cfg.URL)
	}
	return nil
}
