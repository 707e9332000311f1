package main

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/apiplate/internal/config"
)

func testConfig(port string) *config.Config {
	return &config.Config{
		AppName:             "Acme",
		AppEnv:              "development",
		AppURL:              "http://localhost",
		Port:                port,
		DBDriver:            "sqlite",
		DBConnection:        ":memory:?_pragma=foreign_keys(1)",
		JWTSecret:           "test-secret",
		JWTExpiry:           30 * time.Minute,
		BcryptCost:          4,
		EmailProvider:       config.EmailProviderLog,
		CacheType:           config.CacheInMemory,
		RateLimitAuth:       5,
		RateLimitAuthWindow: time.Minute,
	}
}

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)

	err = run(context.Background(), testConfig(port))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen")
}

func TestRunStopsCleanlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, testConfig("0"))
	assert.NoError(t, err)
}
