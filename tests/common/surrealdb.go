// Package common provides the shared SurrealDB container harness for
// papertrade storage integration tests.
package common

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// defaultImage pins the SurrealDB release the storage layer is tested
// against. Override with PAPERTRADE_TEST_SURREALDB_IMAGE.
const defaultImage = "surrealdb/surrealdb:v3.0.0"

var (
	surrealOnce      sync.Once
	surrealContainer *SurrealDBContainer
	surrealError     error
)

// SurrealDBContainer wraps a testcontainers SurrealDB instance shared by
// every storage test in the process.
type SurrealDBContainer struct {
	container testcontainers.Container
	host      string
	port      string
}

// StartSurrealDB returns the shared SurrealDB container, starting it on
// first use. Tests isolate themselves with per-test database names, so one
// container serves the whole run.
func StartSurrealDB(t *testing.T) *SurrealDBContainer {
	t.Helper()

	surrealOnce.Do(func() {
		surrealContainer, surrealError = startSurrealContainer(context.Background())
	})

	if surrealError != nil {
		t.Fatalf("SurrealDB container failed: %v", surrealError)
	}

	return surrealContainer
}

func startSurrealContainer(ctx context.Context) (*SurrealDBContainer, error) {
	image := os.Getenv("PAPERTRADE_TEST_SURREALDB_IMAGE")
	if image == "" {
		image = defaultImage
	}

	req := testcontainers.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"8000/tcp"},
		Cmd:          []string{"start", "--user", "root", "--pass", "root"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("8000/tcp"),
			wait.ForLog("Started web server"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start SurrealDB container %s: %w", image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get SurrealDB host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "8000/tcp")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("get SurrealDB port: %w", err)
	}

	return &SurrealDBContainer{
		container: container,
		host:      host,
		port:      mappedPort.Port(),
	}, nil
}

// Address returns the WebSocket RPC address the storage manager connects to.
func (c *SurrealDBContainer) Address() string {
	return fmt.Sprintf("ws://%s:%s/rpc", c.host, c.port)
}

// Cleanup terminates the container. Call from TestMain if needed.
func (c *SurrealDBContainer) Cleanup() {
	if c != nil && c.container != nil {
		c.container.Terminate(context.Background())
	}
}
