package surrealdb

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/papertrade/internal/common"
	tcommon "github.com/bobmcallan/papertrade/tests/common"
)

// testConfig starts the shared SurrealDB container and returns a config
// pointing at it, with a unique database name per test for isolation.
func testConfig(t *testing.T) *common.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}

	sc := tcommon.StartSurrealDB(t)

	// Sanitize t.Name() because subtests produce names like "Test/subtest"
	// and SurrealDB rejects "/" in database names.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	return &common.Config{
		Environment: "test",
		Storage: common.StorageConfig{
			Address:   sc.Address(),
			Namespace: "papertrade_test",
			Database:  fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000),
			Username:  "root",
			Password:  "root",
		},
	}
}

// testManager builds a connected Manager against the shared container.
func testManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(common.NewSilentLogger(), testConfig(t))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}
