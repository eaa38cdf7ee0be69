// Package config reads application settings from .env files, YAML files and the process
// environment. The process environment always wins over file values.
package config

import (
	"os"
)

// Config provides the values of an application's settings.
type Config interface {
	Get(key string) string
	GetOrDefault(key, defaultValue string) string
}

type values map[string]string

func (v values) Get(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return v[key]
}

func (v values) GetOrDefault(key, defaultValue string) string {
	if value := v.Get(key); value != "" {
		return value
	}

	return defaultValue
}

// NewMap returns a Config backed by m, still overridden by the process environment.
func NewMap(m map[string]string) Config {
	v := make(values, len(m))
	for k, value := range m {
		v[k] = value
	}

	return v
}
