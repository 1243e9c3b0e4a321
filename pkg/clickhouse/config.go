package clickhouse

import (
	"errors"
	"time"
)

// ClientConfig holds the connection and per-query settings of a Client.
type ClientConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxExecTime  time.Duration

	UseHTTP      bool
	AsyncInsert  bool
	WaitForAsync bool
}

type ClientOption func(*ClientConfig)

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

func (c ClientConfig) validate() error {
	if c.Host == "" {
		return errors.New("clickhouse: host is required")
	}
	if c.Port <= 0 {
		return errors.New("clickhouse: port must be positive")
	}
	if c.Database == "" {
		return errors.New("clickhouse: database is required")
	}
	return nil
}

// WithAddress sets host and port. A zero port keeps the default.
func WithAddress(host string, port int) ClientOption {
	return func(c *ClientConfig) {
		c.Host = host
		if port > 0 {
			c.Port = port
		}
	}
}

// WithLogin sets the database and the credentials used to open it.
func WithLogin(database, user, password string) ClientOption {
	return func(c *ClientConfig) {
		if database != "" {
			c.Database = database
		}
		if user != "" {
			c.User = user
		}
		c.Password = password
	}
}

func WithPool(maxOpen, maxIdle int, lifetime time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
		if lifetime > 0 {
			c.ConnMaxLifetime = lifetime
		}
	}
}

// WithTimeouts sets dial/read/write timeouts and the server side
// max_execution_time. Zero values keep the defaults.
func WithTimeouts(dial, read, write, maxExec time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if dial > 0 {
			c.DialTimeout = dial
		}
		if read > 0 {
			c.ReadTimeout = read
		}
		if write > 0 {
			c.WriteTimeout = write
		}
		c.MaxExecTime = maxExec
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) ClientOption {
	return func(c *ClientConfig) {
		c.UseHTTP = useHTTP
	}
}

// WithAsyncInsert enables server side insert buffering; wait blocks each
// insert until the buffer is flushed.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = enabled
		c.WaitForAsync = enabled && wait
	}
}
