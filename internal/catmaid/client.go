// Package catmaid talks to a CATMAID skeleton annotation server.
package catmaid

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/model"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catmaid %s: status %d: %s", e.Path, e.Status, e.Body)
}

type Client struct {
	BaseURL   string
	ProjectID int
	Token     string
	HTTP      *http.Client
	Logger    *zap.Logger
}

func NewClient(cfg config.CatmaidConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		ProjectID: cfg.ProjectID,
		Token:     cfg.Token,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
		Logger:    logger,
	}
}

func (c *Client) ConnectorDetails(ctx context.Context, skeleton model.NeuronID) ([]model.Connector, error) {
	q := url.Values{}
	q.Set("skeleton_ids[0]", strconv.FormatInt(int64(skeleton), 10))
	body, err := c.do(ctx, http.MethodGet, "connectors/", q)
	if err != nil {
		return nil, err
	}

	ids := gjson.GetBytes(body, "connectors.#.0").Array()
	if len(ids) == 0 {
		return []model.Connector{}, nil
	}

	form := url.Values{}
	for i, id := range ids {
		form.Set(fmt.Sprintf("connector_ids[%d]", i), id.String())
	}
	body, err = c.do(ctx, http.MethodPost, "connector/skeletons", form)
	if err != nil {
		return nil, err
	}

	var out []model.Connector
	for _, entry := range gjson.ParseBytes(body).Array() {
		out = append(out, decodeConnector(entry))
	}
	c.Logger.Debug("fetched connector details",
		zap.Int64("skeleton", int64(skeleton)),
		zap.Int("connectors", len(out)),
	)
	return out, nil
}

// decodeConnector reads a [connector_id, {details}] pair.
func decodeConnector(entry gjson.Result) model.Connector {
	details := entry.Get("1")
	conn := model.Connector{ID: entry.Get("0").Int()}

	if v := details.Get("presynaptic_to"); v.Exists() && v.Type != gjson.Null {
		skid := model.NeuronID(v.Int())
		conn.PresynapticTo = &skid
	}
	if v := details.Get("presynaptic_to_node"); v.Exists() && v.Type != gjson.Null {
		n := model.NodeID(v.Int())
		conn.PresynapticNode = &n
	}
	for _, v := range details.Get("postsynaptic_to").Array() {
		conn.PostsynapticTo = append(conn.PostsynapticTo, model.NeuronID(v.Int()))
	}
	for _, v := range details.Get("postsynaptic_to_node").Array() {
		if v.Type == gjson.Null {
			conn.PostsynapticNodes = append(conn.PostsynapticNodes, nil)
			continue
		}
		n := model.NodeID(v.Int())
		conn.PostsynapticNodes = append(conn.PostsynapticNodes, &n)
	}
	return conn
}

func (c *Client) NodeLocations(ctx context.Context, nodes []model.NodeID) ([]model.Point, error) {
	if len(nodes) == 0 {
		return []model.Point{}, nil
	}

	form := url.Values{}
	for i, n := range nodes {
		form.Set(fmt.Sprintf("node_ids[%d]", i), strconv.FormatInt(int64(n), 10))
	}
	body, err := c.do(ctx, http.MethodPost, "nodes/location", form)
	if err != nil {
		return nil, err
	}

	byID := make(map[model.NodeID]model.Point)
	for _, row := range gjson.ParseBytes(body).Array() {
		byID[model.NodeID(row.Get("0").Int())] = model.Point{
			X: row.Get("1").Float(),
			Y: row.Get("2").Float(),
			Z: row.Get("3").Float(),
		}
	}

	points := make([]model.Point, len(nodes))
	for i, n := range nodes {
		p, ok := byID[n]
		if !ok {
			return nil, fmt.Errorf("catmaid returned no location for node %d", n)
		}
		points[i] = p
	}
	return points, nil
}

func (c *Client) do(ctx context.Context, method, path string, values url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%d/%s", c.BaseURL, c.ProjectID, path)

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, endpoint+"?"+values.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(values.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	if c.Token != "" {
		req.Header.Set("X-Authorization", "Token "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Path: path, Body: string(body)}
	}
	// CATMAID reports some failures as 200 with an error object.
	if e := gjson.GetBytes(body, "error"); e.Exists() {
		return nil, &APIError{Status: resp.StatusCode, Path: path, Body: e.String()}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("catmaid %s: invalid JSON response", path)
	}
	return body, nil
}
