package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sllt/fluentdb/pkg/fluentdb/logging"
)

const (
	defaultFileName         = ".env"
	defaultOverrideFileName = ".local.env"
)

// NewEnvFile loads <folder>/.env and then the override file on top of it. The override
// file is .<APP_ENV>.env when APP_ENV is set and .local.env otherwise. Missing files are
// skipped.
func NewEnvFile(folder string, logger logging.Logger) Config {
	conf := make(values)

	conf.load(filepath.Join(folder, defaultFileName), logger)

	override := defaultOverrideFileName
	if env := os.Getenv("APP_ENV"); env != "" {
		override = "." + env + ".env"
	}

	conf.load(filepath.Join(folder, override), logger)

	return conf
}

func (v values) load(file string, logger logging.Logger) {
	m, err := godotenv.Read(file)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		if logger != nil {
			logger.Debugf("config file %s not found, skipping", file)
		}
	case err != nil:
		if logger != nil {
			logger.Warnf("failed to load config from file: %s, Err: %v", file, err)
		}
	default:
		for k, value := range m {
			v[k] = value
		}

		if logger != nil {
			logger.Infof("loaded config from file: %s", file)
		}
	}
}
