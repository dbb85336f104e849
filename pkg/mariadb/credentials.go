package mariadb

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 3306
	DefaultMinPoolSize = 10
	DefaultMaxPoolSize = 10

	connectTimeout  = 160 * time.Second
	maxConnIdleTime = 10 * time.Minute
	maxConnLifetime = 30 * time.Minute
)

// Credentials describes how to reach one MariaDB server and how to size its
// connection pool. Zero values for Host, Port and the pool sizes are filled
// with defaults at connect time.
type Credentials struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Database    string
	MinPoolSize int
	MaxPoolSize int
}

// NewCredentials returns credentials for the default host and port.
func NewCredentials(username, password, database string) Credentials {
	return Credentials{Username: username, Password: password, Database: database}.withDefaults()
}

func (c Credentials) withDefaults() Credentials {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MinPoolSize == 0 {
		c.MinPoolSize = DefaultMinPoolSize
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	return c
}

// DSN builds the driver connection string.
func (c Credentials) DSN() string {
	c = c.withDefaults()
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Database
	cfg.Timeout = connectTimeout
	cfg.ParseTime = true
	// The schema loader sends one statement at a time; multi-statement
	// scripts are split client-side, so MultiStatements stays off.
	return cfg.FormatDSN()
}
