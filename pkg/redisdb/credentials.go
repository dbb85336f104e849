package redisdb

import (
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPort        = 6379
	DefaultMinPoolSize = 5
	DefaultMaxPoolSize = 10
)

// Credentials describes how to reach one Redis server and how to size its
// connection pool. Zero values for Port and the pool sizes are filled with
// defaults at connect time.
type Credentials struct {
	Host        string
	Port        int
	Username    string
	Password    string
	DB          int
	ClientName  string
	MinPoolSize int
	MaxPoolSize int
}

// NewCredentials returns credentials for host with the default port, pool
// sizing and database 0.
func NewCredentials(host string) Credentials {
	return Credentials{Host: host}.withDefaults()
}

func (c Credentials) withDefaults() Credentials {
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

// Addr returns the host:port pair.
func (c Credentials) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// options translates the credentials into driver options.
func (c Credentials) options() *redis.Options {
	c = c.withDefaults()
	return &redis.Options{
		Addr:         c.Addr(),
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		ClientName:   c.ClientName,
		PoolSize:     c.MaxPoolSize,
		MinIdleConns: c.MinPoolSize,
	}
}
