package backend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/catmaid"
	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/connectors"
	"github.com/agenthands/synapse/internal/core/partners"
	"github.com/agenthands/synapse/internal/driver"
	"github.com/agenthands/synapse/internal/materialize"
	"github.com/agenthands/synapse/internal/realign"
	"github.com/agenthands/synapse/internal/store"
)

// Backends holds the service adapters selected by configuration.
type Backends struct {
	Synapses   partners.SynapseQuerier
	Connectors connectors.ConnectorSource
	Realigner  connectors.Realigner
	// Store is set whenever either side is served from Memgraph.
	Store *store.GraphStore

	driver driver.GraphDriver
}

// DialFunc opens the graph driver. Tests replace it.
type DialFunc func(ctx context.Context, cfg config.MemgraphConfig, logger *zap.Logger) (driver.GraphDriver, error)

func DialMemgraph(ctx context.Context, cfg config.MemgraphConfig, logger *zap.Logger) (driver.GraphDriver, error) {
	d, err := driver.NewMemgraphDriver(ctx, cfg.URI, cfg.User, cfg.Password, logger)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func Open(ctx context.Context, cfg *config.Config, dial DialFunc, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dial == nil {
		dial = DialMemgraph
	}

	b := &Backends{}
	graph := func() (*store.GraphStore, error) {
		if b.Store != nil {
			return b.Store, nil
		}
		d, err := dial(ctx, cfg.Memgraph, logger.Named("memgraph"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to memgraph: %w", err)
		}
		b.driver = d
		b.Store = store.NewGraphStore(d, logger.Named("store"))
		return b.Store, nil
	}

	switch kind := strings.ToLower(cfg.Backend.Synapses); kind {
	case "", "memgraph":
		s, err := graph()
		if err != nil {
			return nil, err
		}
		b.Synapses = s
	case "materialize":
		b.Synapses = materialize.NewClient(cfg.Materialize, logger.Named("materialize"))
	default:
		return nil, fmt.Errorf("unsupported synapse backend: %s", kind)
	}

	switch kind := strings.ToLower(cfg.Backend.Connectors); kind {
	case "", "memgraph":
		s, err := graph()
		if err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.Connectors = s
	case "catmaid":
		b.Connectors = catmaid.NewClient(cfg.Catmaid, logger.Named("catmaid"))
	default:
		_ = b.Close(ctx)
		return nil, fmt.Errorf("unsupported connector backend: %s", kind)
	}

	r, err := realign.New(cfg.Realign)
	if err != nil {
		_ = b.Close(ctx)
		return nil, err
	}
	b.Realigner = r

	return b, nil
}

func (b *Backends) Close(ctx context.Context) error {
	if b.driver == nil {
		return nil
	}
	return b.driver.Close(ctx)
}
