// Package config loads and validates Door Core configuration.
//
// Configuration comes from three layers, each overriding the last:
// hardcoded defaults, a YAML file, and DOORCORE_* environment variables.
// Secrets (JWT signing key, MQTT password) should always come from the
// environment in production.
package config
