package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:         "ch.local",
		Port:         9000,
		Database:     "hospital",
		User:         "svc",
		Password:     "p@ss",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  time.Minute,
		AsyncInsert:  true,
		WaitForAsync: true,
	})
	u, err := url.Parse(dsn)
	require.NoError(t, err)

	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9000", u.Host)
	assert.Equal(t, "/hospital", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "5s", u.Query().Get("dial_timeout"))
	assert.Equal(t, "60", u.Query().Get("max_execution_time"))
	assert.Equal(t, "1", u.Query().Get("wait_for_async_insert"))
	assert.Empty(t, u.Query().Get("read_timeout"))
}

func TestBuildDSN_HTTP(t *testing.T) {
	dsn := buildDSN(ClientConfig{Host: "h", Port: 8123, Database: "d", User: "u", UseHTTP: true})
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Empty(t, u.RawQuery)
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestClientOptions(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithAddress("ch", 0),
		WithLogin("", "", "secret"),
		WithTimeouts(0, time.Minute, 0, 0),
		WithAsyncInsert(false, true),
	} {
		opt(&cfg)
	}
	require.NoError(t, cfg.validate())
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, time.Minute, cfg.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.False(t, cfg.WaitForAsync)
}
