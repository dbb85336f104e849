// Package testhelpers starts throwaway store containers for integration
// tests. Each store gets one shared container per test run; helpers skip
// in short mode because they require Docker.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stokehq/stoke/pkg/mariadb"
	"github.com/stokehq/stoke/pkg/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	mariadbImage  = "mariadb:11"

	testUser     = "stoke"
	testPassword = "stoke-test"
	testDatabase = "stoke_test"
)

var (
	pgCreds sharedCredentials[postgres.Credentials]
	myCreds sharedCredentials[mariadb.Credentials]
)

type sharedCredentials[T any] struct {
	once  sync.Once
	creds T
	err   error
}

// PostgresCredentials returns credentials for a shared PostgreSQL container,
// starting it on first use.
func PostgresCredentials(t *testing.T) postgres.Credentials {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	pgCreds.once.Do(func() {
		pgCreds.creds, pgCreds.err = startPostgres()
	})
	if pgCreds.err != nil {
		t.Fatalf("Failed to start postgres container: %v", pgCreds.err)
	}
	return pgCreds.creds
}

// MariaDBCredentials returns credentials for a shared MariaDB container,
// starting it on first use.
func MariaDBCredentials(t *testing.T) mariadb.Credentials {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	myCreds.once.Do(func() {
		myCreds.creds, myCreds.err = startMariaDB()
	})
	if myCreds.err != nil {
		t.Fatalf("Failed to start mariadb container: %v", myCreds.err)
	}
	return myCreds.creds
}

func startPostgres() (postgres.Credentials, error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       testDatabase,
		},
		// The init scripts restart the server, so wait for the second
		// ready message.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	host, port, err := startContainer(req, "5432")
	if err != nil {
		return postgres.Credentials{}, err
	}

	return postgres.Credentials{
		Host:     host,
		Port:     port,
		Username: testUser,
		Password: testPassword,
		Database: testDatabase,
	}, nil
}

func startMariaDB() (mariadb.Credentials, error) {
	req := testcontainers.ContainerRequest{
		Image:        mariadbImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MARIADB_USER":          testUser,
			"MARIADB_PASSWORD":      testPassword,
			"MARIADB_DATABASE":      testDatabase,
			"MARIADB_ROOT_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("ready for connections").
			WithOccurrence(2).
			WithStartupTimeout(120 * time.Second),
	}

	host, port, err := startContainer(req, "3306")
	if err != nil {
		return mariadb.Credentials{}, err
	}

	return mariadb.Credentials{
		Host:     host,
		Port:     port,
		Username: testUser,
		Password: testPassword,
		Database: testDatabase,
	}, nil
}

func startContainer(req testcontainers.ContainerRequest, portID string) (string, int, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to start container %s: %w", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, nat.Port(portID))
	if err != nil {
		return "", 0, fmt.Errorf("failed to get container port: %w", err)
	}

	return host, mapped.Int(), nil
}
