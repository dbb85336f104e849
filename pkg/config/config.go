// Package config loads store credentials from a YAML file and the
// environment. Environment variables override YAML values; secrets
// (passwords) come from the environment only.
package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/stokehq/stoke/pkg/mariadb"
	"github.com/stokehq/stoke/pkg/postgres"
	"github.com/stokehq/stoke/pkg/redisdb"
)

// Config holds connection settings for every backing store.
type Config struct {
	Redis    RedisConfig    `yaml:"redis"`
	MariaDB  MariaDBConfig  `yaml:"mariadb"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// RedisConfig holds key-value store settings.
type RedisConfig struct {
	Host        string `yaml:"host" env:"REDIS_HOST" env-default:"127.0.0.1"`
	Port        int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Username    string `yaml:"username" env:"REDIS_USERNAME" env-default:""`
	Password    string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB          int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	ClientName  string `yaml:"client_name" env:"REDIS_CLIENT_NAME" env-default:""`
	MinPoolSize int    `yaml:"min_pool_size" env:"REDIS_MIN_POOL_SIZE" env-default:"5"`
	MaxPoolSize int    `yaml:"max_pool_size" env:"REDIS_MAX_POOL_SIZE" env-default:"10"`
}

// MariaDBConfig holds MariaDB settings.
type MariaDBConfig struct {
	Host        string `yaml:"host" env:"MARIADB_HOST" env-default:"127.0.0.1"`
	Port        int    `yaml:"port" env:"MARIADB_PORT" env-default:"3306"`
	Username    string `yaml:"username" env:"MARIADB_USER" env-default:""`
	Password    string `yaml:"-" env:"MARIADB_PASSWORD"` // Secret - not in YAML
	Database    string `yaml:"database" env:"MARIADB_DATABASE" env-default:""`
	MinPoolSize int    `yaml:"min_pool_size" env:"MARIADB_MIN_POOL_SIZE" env-default:"10"`
	MaxPoolSize int    `yaml:"max_pool_size" env:"MARIADB_MAX_POOL_SIZE" env-default:"10"`
}

// PostgresConfig holds PostgreSQL settings.
type PostgresConfig struct {
	Host        string `yaml:"host" env:"PGHOST" env-default:"127.0.0.1"`
	Port        int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	Username    string `yaml:"username" env:"PGUSER" env-default:""`
	Password    string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database    string `yaml:"database" env:"PGDATABASE" env-default:""`
	SSLMode     string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MinPoolSize int32  `yaml:"min_pool_size" env:"PGMIN_POOL_SIZE" env-default:"1"`
	MaxPoolSize int32  `yaml:"max_pool_size" env:"PGMAX_POOL_SIZE" env-default:"25"`
}

// Load reads configuration from the given YAML path, with environment
// overrides. An empty path loads from the environment alone.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		return &cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from environment: %w", err)
	}
	return &cfg, nil
}

// RedisCredentials converts the redis section into provider credentials.
func (c *Config) RedisCredentials() redisdb.Credentials {
	return redisdb.Credentials{
		Host:        c.Redis.Host,
		Port:        c.Redis.Port,
		Username:    c.Redis.Username,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		ClientName:  c.Redis.ClientName,
		MinPoolSize: c.Redis.MinPoolSize,
		MaxPoolSize: c.Redis.MaxPoolSize,
	}
}

// MariaDBCredentials converts the mariadb section into provider credentials.
func (c *Config) MariaDBCredentials() mariadb.Credentials {
	return mariadb.Credentials{
		Host:        c.MariaDB.Host,
		Port:        c.MariaDB.Port,
		Username:    c.MariaDB.Username,
		Password:    c.MariaDB.Password,
		Database:    c.MariaDB.Database,
		MinPoolSize: c.MariaDB.MinPoolSize,
		MaxPoolSize: c.MariaDB.MaxPoolSize,
	}
}

// PostgresCredentials converts the postgres section into provider
// credentials.
func (c *Config) PostgresCredentials() postgres.Credentials {
	return postgres.Credentials{
		Host:        c.Postgres.Host,
		Port:        c.Postgres.Port,
		Username:    c.Postgres.Username,
		Password:    c.Postgres.Password,
		Database:    c.Postgres.Database,
		SSLMode:     c.Postgres.SSLMode,
		MinPoolSize: c.Postgres.MinPoolSize,
		MaxPoolSize: c.Postgres.MaxPoolSize,
	}
}
