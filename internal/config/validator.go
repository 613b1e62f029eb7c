package config

import (
	"fmt"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateFlood(cfg.Flood); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "broker.host",
			Message: "broker host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "broker.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ClientID == "" {
		return &ValidationError{
			Field:   "broker.client_id",
			Message: "broker client id is required",
		}
	}

	if cfg.QueueSize < 1 {
		return &ValidationError{
			Field:   "broker.queue_size",
			Message: "queue size must be positive",
		}
	}

	if cfg.Reconnect.InitialInterval < 0 {
		return &ValidationError{
			Field:   "broker.reconnect.initial_interval",
			Message: "initial_interval must be non-negative",
		}
	}

	if cfg.Reconnect.MaxInterval > 0 && cfg.Reconnect.InitialInterval > 0 && cfg.Reconnect.MaxInterval < cfg.Reconnect.InitialInterval {
		return &ValidationError{
			Field:   "broker.reconnect.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	if cfg.Reconnect.Multiplier <= 0 {
		return &ValidationError{
			Field:   "broker.reconnect.multiplier",
			Message: "multiplier must be positive",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Path == "" {
		return &ValidationError{
			Field:   "database.path",
			Message: "database path is required",
		}
	}

	if cfg.BusyTimeoutMillis < 0 {
		return &ValidationError{
			Field:   "database.busy_timeout_millis",
			Message: "busy timeout must be non-negative",
		}
	}

	return nil
}

func validateFlood(cfg FloodConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.WindowSec <= 0 {
		return &ValidationError{
			Field:   "flood.window_seconds",
			Message: "window must be positive",
		}
	}

	if cfg.Threshold < 1 {
		return &ValidationError{
			Field:   "flood.threshold",
			Message: "threshold must be positive",
		}
	}

	if cfg.CooldownSec < 0 {
		return &ValidationError{
			Field:   "flood.cooldown_seconds",
			Message: "cooldown must be non-negative",
		}
	}

	return nil
}
