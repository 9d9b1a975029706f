// Package materialize queries a CAVE-style materialization engine for
// synapse tables.
package materialize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/model"
)

const (
	preColumn  = "pre_pt_root_id"
	postColumn = "post_pt_root_id"
)

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("materialize: status %d: %s", e.Status, e.Body)
}

type Client struct {
	BaseURL   string
	Datastack string
	Version   int
	Table     string
	Token     string
	HTTP      *http.Client
	Logger    *zap.Logger
}

func NewClient(cfg config.MaterializeConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := cfg.Table
	if table == "" {
		table = "synapses"
	}
	return &Client{
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		Datastack: cfg.Datastack,
		Version:   cfg.Version,
		Table:     table,
		Token:     cfg.Token,
		HTTP:      &http.Client{Timeout: 5 * time.Minute},
		Logger:    logger,
	}
}

func (c *Client) SynapsesByPost(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return c.query(ctx, postColumn, id)
}

func (c *Client) SynapsesByPre(ctx context.Context, id model.NeuronID) (model.SynapseTable, error) {
	return c.query(ctx, preColumn, id)
}

type queryRequest struct {
	FilterInDict map[string]map[string][]int64 `json:"filter_in_dict"`
}

func (c *Client) query(ctx context.Context, column string, id model.NeuronID) (model.SynapseTable, error) {
	payload, err := json.Marshal(queryRequest{
		FilterInDict: map[string]map[string][]int64{
			c.Table: {column: {int64(id)}},
		},
	})
	if err != nil {
		return model.SynapseTable{}, err
	}

	endpoint := fmt.Sprintf("%s/materialize/api/v3/datastack/%s/version/%d/table/%s/query?return_pyarrow=false&arrow_format=false",
		c.BaseURL, c.Datastack, c.Version, c.Table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.SynapseTable{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return model.SynapseTable{}, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.SynapseTable{}, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.SynapseTable{}, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	table, err := decodeSynapses(body)
	if err != nil {
		return model.SynapseTable{}, err
	}
	c.Logger.Debug("synapse query",
		zap.String("column", column),
		zap.Int64("root_id", int64(id)),
		zap.Int("rows", table.Len()),
	)
	return table, nil
}

// decodeSynapses parses a JSON array of row objects. Rows without both
// partner columns, or with a null in either, are rejected.
func decodeSynapses(body []byte) (model.SynapseTable, error) {
	if !gjson.ValidBytes(body) {
		return model.SynapseTable{}, fmt.Errorf("materialize: invalid JSON response")
	}
	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return model.SynapseTable{}, fmt.Errorf("materialize: expected an array of rows")
	}

	rows := make([]model.Synapse, 0, len(result.Array()))
	for i, row := range result.Array() {
		pre, post := row.Get(preColumn), row.Get(postColumn)
		if pre.Type == gjson.Null || post.Type == gjson.Null {
			return model.SynapseTable{}, fmt.Errorf("materialize: row %d is missing %s or %s", i, preColumn, postColumn)
		}
		syn := model.Synapse{
			ID:            row.Get("id").Int(),
			PrePartnerID:  model.NeuronID(pre.Int()),
			PostPartnerID: model.NeuronID(post.Int()),
			Size:          row.Get("size").Int(),
		}
		if pos := row.Get("ctr_pt_position").Array(); len(pos) == 3 {
			syn.Position = &model.Point{X: pos[0].Float(), Y: pos[1].Float(), Z: pos[2].Float()}
		}
		rows = append(rows, syn)
	}
	return model.SynapseTable{Rows: rows}, nil
}
