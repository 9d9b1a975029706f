package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/community"
	"github.com/agenthands/synapse/internal/core/connectors"
	"github.com/agenthands/synapse/internal/core/model"
	"github.com/agenthands/synapse/internal/core/partners"
)

// Analyzer bundles the partner, connector and community operations behind
// one handle for the server and CLI.
type Analyzer struct {
	Partners    *partners.Builder
	Connectors  *connectors.Fetcher
	Communities community.CommunityDetector

	concurrency config.ConcurrencyConfig
	logger      *zap.Logger
}

func NewAnalyzer(synapses partners.SynapseQuerier, source connectors.ConnectorSource, realigner connectors.Realigner, cfg *config.Config, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		Partners:    partners.NewBuilder(synapses, logger.Named("partners")),
		Connectors:  connectors.NewFetcher(source, realigner, logger.Named("connectors")),
		Communities: community.NewDetector(cfg.Server.Community),
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
}

// PartnerTable builds the thresholded partner table for ids. Large inputs are
// split into batches that run concurrently; the concatenated result keeps
// input order.
func (a *Analyzer) PartnerTable(ctx context.Context, ids []model.NeuronID, dir model.Direction, threshold int) (model.SynapseTable, error) {
	batches := partners.Batches(ids, a.concurrency.BatchSize)
	if len(batches) <= 1 || a.concurrency.PartnerBatches <= 1 {
		return a.Partners.Build(ctx, ids, dir, threshold)
	}

	tables, err := a.Partners.BuildBatches(ctx, batches, dir, threshold, a.concurrency.PartnerBatches)
	if err != nil {
		return model.SynapseTable{}, err
	}
	result := model.SynapseTable{Rows: []model.Synapse{}}
	for _, t := range tables {
		result = result.Append(t)
	}
	a.logger.Info("built partner table",
		zap.Int("neurons", len(ids)),
		zap.Int("batches", len(batches)),
		zap.Int("rows", result.Len()),
	)
	return result, nil
}

func (a *Analyzer) ConnectorCoordinates(ctx context.Context, skeleton model.NeuronID, res model.Resolution, transform bool) (in, out *model.CoordinateTable, err error) {
	return a.Connectors.Fetch(ctx, skeleton, res, transform)
}

// PartnerCommunities builds the partner table and groups the neurons in it.
func (a *Analyzer) PartnerCommunities(ctx context.Context, ids []model.NeuronID, dir model.Direction, threshold int) ([]model.Community, error) {
	table, err := a.PartnerTable(ctx, ids, dir, threshold)
	if err != nil {
		return nil, err
	}
	return a.Communities.Detect(table)
}
