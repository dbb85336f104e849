package postgres

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 5432
	DefaultSSLMode     = "disable"
	DefaultMinPoolSize = 1
	DefaultMaxPoolSize = 25

	maxConnLifetime = time.Hour
	maxConnIdleTime = 30 * time.Minute
)

// Credentials describes how to reach one PostgreSQL database and how to size
// its connection pool. Zero values for Host, Port, SSLMode and the pool
// sizes are filled with defaults at connect time.
type Credentials struct {
	Host        string
	Port        int
	Username    string
	Password    string
	Database    string
	SSLMode     string
	MinPoolSize int32
	MaxPoolSize int32
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
	if c.SSLMode == "" {
		c.SSLMode = DefaultSSLMode
	}
	if c.MinPoolSize == 0 {
		c.MinPoolSize = DefaultMinPoolSize
	}
	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	return c
}

// URL builds the connection URL.
func (c Credentials) URL() string {
	c = c.withDefaults()
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}
