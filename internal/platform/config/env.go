// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment key read by the service.
const EnvPrefix = "LUXE_REWARD_"

// ParseEnv loads configuration from environment variables.
//
// Struct tags name keys without EnvPrefix; the prefix is applied here so
// configs stay readable and tests can rely on a single namespace.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
