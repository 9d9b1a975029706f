//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core"
	"github.com/agenthands/synapse/internal/driver"
	"github.com/agenthands/synapse/internal/realign"
	"github.com/agenthands/synapse/internal/store"
)

// connect returns a store on the Memgraph named by MEMGRAPH_URI and an id
// base unique to this run, so repeated runs never see each other's data.
func connect(t *testing.T) (*store.GraphStore, int64) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	d, err := driver.NewMemgraphDriver(ctx, uri, os.Getenv("MEMGRAPH_USER"), os.Getenv("MEMGRAPH_PASSWORD"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	s := store.NewGraphStore(d, logger)
	require.NoError(t, s.BuildIndices(ctx))

	return s, int64(uuid.New().ID()) * 1000
}

func analyzer(t *testing.T, s *store.GraphStore) *core.Analyzer {
	cfg := config.Default()
	cfg.Concurrency.BatchSize = 1
	return core.NewAnalyzer(s, s, realign.Identity{Space: "fanc4"}, cfg, zaptest.NewLogger(t))
}
