//go:build integration_test || all_tests

package integration_testing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/2beens/gymlog/internal"
	"github.com/2beens/gymlog/internal/config"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

const (
	serverPort  = 9010
	serverHost  = "127.0.0.1"
	metricsPort = "9011"
)

var (
	serverEndpoint  = fmt.Sprintf("http://%s:%d", serverHost, serverPort)
	metricsEndpoint = fmt.Sprintf("http://%s:%s/metrics", serverHost, metricsPort)
)

func getTestConfig(redisPort, dataDir string) *config.Config {
	return &config.Config{
		Environment:           "development",
		Host:                  serverHost,
		Port:                  serverPort,
		PrometheusMetricsHost: serverHost,
		PrometheusMetricsPort: metricsPort,
		StoreDriver:           config.StoreDriverSqlite,
		SqlitePath:            filepath.Join(dataDir, "gymlog.db"),
		RedisHost:             "localhost",
		RedisPort:             redisPort,
		RestDefaultSeconds:    60,
		BackupDir:             filepath.Join(dataDir, "backups"),
		SyncRateLimitPerMin:   2,
	}
}

func redisSetup(pool *dockertest.Pool) (string, func(), error) {
	redisResource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", nil, fmt.Errorf("run redis: %s", err)
	}

	redisPort := redisResource.GetPort("6379/tcp")
	return redisPort, func() {
		_ = redisResource.Close()
	}, nil
}

// serverSetup starts a sqlite backed server next to a throwaway redis. No
// webhook is configured, so remote sync stays disabled.
func serverSetup(ctx context.Context, dataDir string) (*internal.Server, func(), error) {
	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, fmt.Errorf("could not create new dockertest pool: %s", err)
	}

	// uses pool to try to connect to Docker
	if err = pool.Client.Ping(); err != nil {
		return nil, nil, fmt.Errorf("could not ping dockertest pool: %s", err)
	}

	redisPort, redisCleanup, err := redisSetup(pool)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup redis: %s", err.Error())
	}

	cfg := getTestConfig(redisPort, dataDir)
	server, err := internal.NewServer(
		ctx,
		internal.NewServerParams{
			Config:                  cfg,
			Secrets:                 &config.Secrets{OtelServiceName: "gymlog-test"},
			HoneycombTracingEnabled: false,
		},
	)
	if err != nil {
		redisCleanup()
		return nil, nil, err
	}

	server.Serve(cfg.Host, cfg.Port)

	if err := pool.Retry(func() error {
		_, err := get(serverEndpoint + "/session")
		return err
	}); err != nil {
		server.GracefulShutdown()
		redisCleanup()
		return nil, nil, fmt.Errorf("wait for server: %w", err)
	}

	return server, func() {
		server.GracefulShutdown()
		redisCleanup()
	}, nil
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func get(url string) (string, error) {
	resp, err := httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return string(body), fmt.Errorf("status %d", resp.StatusCode)
	}
	return string(body), nil
}
