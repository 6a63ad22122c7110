package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver must be one of: %s, %s, %s", DriverMemory, DriverPostgres, DriverSQLite))
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("api.max_upload_bytes must be positive"))
	}
	if c.API.PreviewRows < 0 {
		errs = append(errs, errors.New("api.preview_rows must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}
	if c.API.AuthEnabled && c.API.JWTSecret == "" {
		errs = append(errs, errors.New("api.jwt_secret is required when auth is enabled"))
	}

	if c.Prometheus.Enabled && c.Prometheus.Port == c.API.Port {
		errs = append(errs, errors.New("prometheus.port must differ from api.port"))
	}

	if c.Forecast.MinTrainPoints <= 0 {
		errs = append(errs, errors.New("forecast.min_train_points must be positive"))
	}
	if c.Forecast.DefaultHorizon != 1 && c.Forecast.DefaultHorizon != 7 {
		errs = append(errs, errors.New("forecast.default_horizon must be 1 or 7"))
	}
	if _, err := c.Forecast.Location(); err != nil {
		errs = append(errs, fmt.Errorf("forecast.timezone is invalid: %w", err))
	}

	if c.Source.Timeout <= 0 {
		errs = append(errs, errors.New("source.timeout must be positive"))
	}
	if c.Source.MaxBytes <= 0 {
		errs = append(errs, errors.New("source.max_bytes must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
