package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sllt/fluentdb/pkg/fluentdb/logging"
)

// NewYAMLFile reads the YAML file at path. Nested mappings are flattened into upper case
// keys joined by underscores, so
//
//	db:
//	  host: localhost
//
// is read as DB_HOST.
func NewYAMLFile(path string, logger logging.Logger) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var doc map[string]any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse config file %s", path)
	}

	conf := make(values)
	conf.flatten("", doc)

	if logger != nil {
		logger.Infof("loaded %d config keys from file: %s", len(conf), path)
	}

	return conf, nil
}

func (v values) flatten(prefix string, doc map[string]any) {
	for k, value := range doc {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch t := value.(type) {
		case map[string]any:
			v.flatten(key, t)
		case nil:
			v[key] = ""
		case []any:
			parts := make([]string, len(t))
			for i, p := range t {
				parts[i] = fmt.Sprint(p)
			}

			v[key] = strings.Join(parts, ",")
		default:
			v[key] = fmt.Sprint(t)
		}
	}
}
