// Package store keeps a materialized synapse graph and a skeleton annotation
// graph in Memgraph and serves both as query backends.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/core/model"
	"github.com/agenthands/synapse/internal/driver"
)

var ErrNodeNotFound = errors.New("treenode not found")

type GraphStore struct {
	Driver driver.GraphDriver
	Logger *zap.Logger
}

func NewGraphStore(d driver.GraphDriver, logger *zap.Logger) *GraphStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphStore{Driver: d, Logger: logger}
}

func (s *GraphStore) BuildIndices(ctx context.Context) error {
	return s.Driver.BuildIndices(ctx)
}

func (s *GraphStore) SynapsesByPost(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return s.synapses(ctx, driver.SynapsesByPostQuery, id)
}

func (s *GraphStore) SynapsesByPre(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return s.synapses(ctx, driver.SynapsesByPreQuery, id)
}

func (s *GraphStore) synapses(ctx context.Context, query string, id model.NeuronID) (model.SynapseTable, error) {
	res, err := s.Driver.ExecuteQuery(ctx, query, map[string]any{"root_id": int64(id)})
	if err != nil {
		return model.SynapseTable{}, err
	}

	rows := make([]model.Synapse, 0, len(res.Records))
	for _, rec := range res.Records {
		syn, err := decodeSynapse(rec)
		if err != nil {
			return model.SynapseTable{}, err
		}
		rows = append(rows, syn)
	}
	return model.SynapseTable{Rows: rows}, nil
}

func decodeSynapse(rec *neo4j.Record) (model.Synapse, error) {
	id, err := requiredInt(rec, "id")
	if err != nil {
		return model.Synapse{}, err
	}
	pre, err := requiredInt(rec, "pre_pt_root_id")
	if err != nil {
		return model.Synapse{}, err
	}
	post, err := requiredInt(rec, "post_pt_root_id")
	if err != nil {
		return model.Synapse{}, err
	}

	syn := model.Synapse{ID: id, PrePartnerID: model.NeuronID(pre), PostPartnerID: model.NeuronID(post)}
	if size, ok := optionalInt(rec, "size"); ok {
		syn.Size = size
	}
	if p, ok := optionalPoint(rec); ok {
		syn.Position = &p
	}
	return syn, nil
}

// SaveSynapses writes synapse rows, creating partner neurons as needed.
func (s *GraphStore) SaveSynapses(ctx context.Context, table model.SynapseTable) error {
	for _, syn := range table.Rows {
		params := map[string]any{
			"id":      syn.ID,
			"pre_id":  int64(syn.PrePartnerID),
			"post_id": int64(syn.PostPartnerID),
			"size":    syn.Size,
			"x":       nil,
			"y":       nil,
			"z":       nil,
		}
		if syn.Position != nil {
			params["x"], params["y"], params["z"] = syn.Position.X, syn.Position.Y, syn.Position.Z
		}
		if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveSynapseQuery, params); err != nil {
			return fmt.Errorf("failed to save synapse %d: %w", syn.ID, err)
		}
	}
	s.Logger.Debug("saved synapses", zap.Int("count", table.Len()))
	return nil
}

func (s *GraphStore) ConnectorDetails(ctx context.Context, skeleton model.NeuronID) ([]model.Connector, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.ConnectorDetailsQuery, map[string]any{"skeleton_id": int64(skeleton)})
	if err != nil {
		return nil, err
	}

	out := make([]model.Connector, 0, len(res.Records))
	for _, rec := range res.Records {
		id, err := requiredInt(rec, "connector_id")
		if err != nil {
			return nil, err
		}
		c := model.Connector{ID: id}
		if v, ok := optionalInt(rec, "presynaptic_to"); ok {
			skid := model.NeuronID(v)
			c.PresynapticTo = &skid
		}
		if v, ok := optionalInt(rec, "presynaptic_to_node"); ok {
			n := model.NodeID(v)
			c.PresynapticNode = &n
		}
		for _, v := range listOf(rec, "postsynaptic_to") {
			if skid, ok := v.(int64); ok {
				c.PostsynapticTo = append(c.PostsynapticTo, model.NeuronID(skid))
			}
		}
		for _, v := range listOf(rec, "postsynaptic_to_node") {
			if n, ok := v.(int64); ok {
				node := model.NodeID(n)
				c.PostsynapticNodes = append(c.PostsynapticNodes, &node)
			} else {
				c.PostsynapticNodes = append(c.PostsynapticNodes, nil)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *GraphStore) NodeLocations(ctx context.Context, nodes []model.NodeID) ([]model.Point, error) {
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = int64(n)
	}
	res, err := s.Driver.ExecuteQuery(ctx, driver.NodeLocationsQuery, map[string]any{"node_ids": ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[model.NodeID]model.Point, len(res.Records))
	for _, rec := range res.Records {
		id, err := requiredInt(rec, "id")
		if err != nil {
			return nil, err
		}
		p, ok := optionalPoint(rec)
		if !ok {
			return nil, fmt.Errorf("treenode %d has no location", id)
		}
		byID[model.NodeID(id)] = p
	}

	points := make([]model.Point, len(nodes))
	for i, n := range nodes {
		p, ok := byID[n]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, n)
		}
		points[i] = p
	}
	return points, nil
}

// SaveConnector writes a connector and links it to already stored treenodes.
func (s *GraphStore) SaveConnector(ctx context.Context, c model.Connector) error {
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveConnectorQuery, map[string]any{"id": c.ID}); err != nil {
		return fmt.Errorf("failed to save connector %d: %w", c.ID, err)
	}
	if c.PresynapticNode != nil {
		params := map[string]any{"node_id": int64(*c.PresynapticNode), "connector_id": c.ID}
		if _, err := s.Driver.ExecuteQuery(ctx, driver.LinkPresynapticQuery, params); err != nil {
			return fmt.Errorf("failed to link connector %d: %w", c.ID, err)
		}
	}
	for _, n := range c.PostsynapticNodes {
		if n == nil {
			continue
		}
		params := map[string]any{"node_id": int64(*n), "connector_id": c.ID}
		if _, err := s.Driver.ExecuteQuery(ctx, driver.LinkPostsynapticQuery, params); err != nil {
			return fmt.Errorf("failed to link connector %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *GraphStore) SaveTreenode(ctx context.Context, id model.NodeID, skeleton model.NeuronID, p model.Point) error {
	params := map[string]any{
		"id":          int64(id),
		"skeleton_id": int64(skeleton),
		"x":           p.X,
		"y":           p.Y,
		"z":           p.Z,
	}
	if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveTreenodeQuery, params); err != nil {
		return fmt.Errorf("failed to save treenode %d: %w", id, err)
	}
	return nil
}

// SaveSkeletons writes treenodes before the connectors that link to them.
func (s *GraphStore) SaveSkeletons(ctx context.Context, nodes []model.Treenode, connectors []model.Connector) error {
	for _, n := range nodes {
		if err := s.SaveTreenode(ctx, n.ID, n.Skeleton, n.Position); err != nil {
			return err
		}
	}
	for _, c := range connectors {
		if err := s.SaveConnector(ctx, c); err != nil {
			return err
		}
	}
	s.Logger.Debug("saved skeletons", zap.Int("treenodes", len(nodes)), zap.Int("connectors", len(connectors)))
	return nil
}
