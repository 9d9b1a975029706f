package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/catmaid"
	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/driver"
	"github.com/agenthands/synapse/internal/materialize"
	"github.com/agenthands/synapse/internal/store"
)

type MockDriver struct {
	Closed bool
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error { return nil }

func (m *MockDriver) Close(ctx context.Context) error {
	m.Closed = true
	return nil
}

func dialer(d *MockDriver, dials *int) DialFunc {
	return func(ctx context.Context, cfg config.MemgraphConfig, logger *zap.Logger) (driver.GraphDriver, error) {
		*dials++
		return d, nil
	}
}

func TestOpen_MemgraphSharesOneDriver(t *testing.T) {
	d := &MockDriver{}
	dials := 0

	b, err := Open(context.Background(), config.Default(), dialer(d, &dials), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, dials)
	assert.IsType(t, &store.GraphStore{}, b.Synapses)
	assert.Same(t, b.Store, b.Connectors)
	assert.Equal(t, "fanc4", b.Realigner.Target())

	require.NoError(t, b.Close(context.Background()))
	assert.True(t, d.Closed)
}

func TestOpen_RemoteBackends(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendConfig{Synapses: "materialize", Connectors: "catmaid"}
	dials := 0

	b, err := Open(context.Background(), cfg, dialer(&MockDriver{}, &dials), nil)
	require.NoError(t, err)

	assert.Zero(t, dials)
	assert.Nil(t, b.Store)
	assert.IsType(t, &materialize.Client{}, b.Synapses)
	assert.IsType(t, &catmaid.Client{}, b.Connectors)
	assert.NoError(t, b.Close(context.Background()))
}

func TestOpen_Errors(t *testing.T) {
	cfg := config.Default()
	cfg.Backend.Synapses = "bigquery"
	_, err := Open(context.Background(), cfg, dialer(&MockDriver{}, new(int)), nil)
	assert.ErrorContains(t, err, "unsupported synapse backend")

	d := &MockDriver{}
	cfg = config.Default()
	cfg.Realign.Kind = "elastix"
	_, err = Open(context.Background(), cfg, dialer(d, new(int)), nil)
	assert.Error(t, err)
	assert.True(t, d.Closed)

	unreachable := errors.New("connection refused")
	_, err = Open(context.Background(), config.Default(), func(context.Context, config.MemgraphConfig, *zap.Logger) (driver.GraphDriver, error) {
		return nil, unreachable
	}, nil)
	assert.ErrorIs(t, err, unreachable)
}
