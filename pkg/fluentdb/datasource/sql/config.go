package sql

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"

	"github.com/sllt/fluentdb/pkg/fluentdb/config"
	"github.com/sllt/fluentdb/pkg/fluentdb/datasource/sql/qb"
)

const (
	defaultCharset = "utf8mb4"
	defaultSSLMode = "disable"
)

// DBConfig holds the connection settings of a SQL datasource.
type DBConfig struct {
	Dialect         string        `env:"DB_DIALECT" validate:"required,oneof=mysql postgres sqlite"`
	HostName        string        `env:"DB_HOST" validate:"required_unless=Dialect sqlite"`
	Port            string        `env:"DB_PORT" validate:"omitempty,numeric"`
	User            string        `env:"DB_USER" validate:"required_unless=Dialect sqlite"`
	Password        string        `env:"DB_PASSWORD" validate:"-"`
	Database        string        `env:"DB_NAME" validate:"required"`
	Charset         string        `env:"DB_CHARSET" validate:"omitempty,ident"`
	SSLMode         string        `env:"DB_SSL_MODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Prefix          string        `env:"DB_TABLE_PREFIX" validate:"omitempty,ident"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" validate:"gte=0"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" validate:"gte=0"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" validate:"gte=0"`
}

// ConfigFromEnv reads the DB_* keys of cfg and validates the result.
//
// DB_DIALECT defaults to mysql. DB_PORT defaults to the dialect's standard port,
// DB_CHARSET to utf8mb4 and DB_SSL_MODE to disable.
func ConfigFromEnv(cfg config.Config) (*DBConfig, error) {
	dialect, err := qb.ParseDialect(cfg.Get("DB_DIALECT"))
	if err != nil {
		return nil, err
	}

	maxOpen, err := intValue(cfg, "DB_MAX_OPEN_CONNS")
	if err != nil {
		return nil, err
	}

	maxIdle, err := intValue(cfg, "DB_MAX_IDLE_CONNS")
	if err != nil {
		return nil, err
	}

	lifetime, err := time.ParseDuration(cfg.GetOrDefault("DB_CONN_MAX_LIFETIME", "0s"))
	if err != nil {
		return nil, errors.Wrap(err, "DB_CONN_MAX_LIFETIME")
	}

	c := &DBConfig{
		Dialect:         string(dialect),
		HostName:        cfg.Get("DB_HOST"),
		Port:            cfg.GetOrDefault("DB_PORT", defaultPort(dialect)),
		User:            cfg.Get("DB_USER"),
		Password:        cfg.Get("DB_PASSWORD"),
		Database:        cfg.Get("DB_NAME"),
		Charset:         cfg.GetOrDefault("DB_CHARSET", defaultCharset),
		SSLMode:         cfg.GetOrDefault("DB_SSL_MODE", defaultSSLMode),
		Prefix:          cfg.Get("DB_TABLE_PREFIX"),
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: lifetime,
	}

	if err := config.Validate(c); err != nil {
		return nil, errors.Wrap(err, "invalid database configuration")
	}

	return c, nil
}

func intValue(cfg config.Config, key string) (int, error) {
	v, err := strconv.Atoi(cfg.GetOrDefault(key, "0"))
	if err != nil {
		return 0, errors.Wrap(err, key)
	}

	return v, nil
}

func defaultPort(dialect qb.Dialect) string {
	switch dialect {
	case qb.DialectMySQL:
		return "3306"
	case qb.DialectPostgres:
		return "5432"
	default:
		return ""
	}
}

// DSN returns the data source name for the configured driver.
func (c *DBConfig) DSN() string {
	switch qb.Dialect(c.Dialect) {
	case qb.DialectPostgres:
		host := c.HostName
		if c.Port != "" {
			host = net.JoinHostPort(c.HostName, c.Port)
		}

		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   host,
			Path:   "/" + c.Database,
		}

		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}

		return u.String()
	case qb.DialectSQLite:
		return c.Database
	default:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.HostName, c.Port)
		mc.DBName = c.Database
		mc.ParseTime = true

		if c.Charset != "" {
			mc.Params = map[string]string{"charset": c.Charset}
		}

		return mc.FormatDSN()
	}
}

func (c *DBConfig) driverName() string {
	switch qb.Dialect(c.Dialect) {
	case qb.DialectPostgres:
		return "postgres"
	case qb.DialectSQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

func (c *DBConfig) address() string {
	if qb.Dialect(c.Dialect) == qb.DialectSQLite {
		return c.Database
	}

	return net.JoinHostPort(c.HostName, c.Port)
}
