package catmaid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/model"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/3/connectors/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("X-Authorization"))
		if r.URL.Query().Get("skeleton_ids[0]") == "404" {
			w.Write([]byte(`{"connectors": [], "partners": {}}`))
			return
		}
		assert.Equal(t, "42", r.URL.Query().Get("skeleton_ids[0]"))
		w.Write([]byte(`{"connectors": [[1, 10.0, 20.0, 30.0], [2, 1.0, 2.0, 3.0]]}`))
	})
	mux.HandleFunc("/3/connector/skeletons", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "1", r.PostForm.Get("connector_ids[0]"))
		assert.Equal(t, "2", r.PostForm.Get("connector_ids[1]"))
		w.Write([]byte(`[
			[1, {"presynaptic_to": 42, "presynaptic_to_node": 420,
			     "postsynaptic_to": [7, 8], "postsynaptic_to_node": [70, null]}],
			[2, {"presynaptic_to": null, "presynaptic_to_node": null,
			     "postsynaptic_to": [42], "postsynaptic_to_node": [421]}]
		]`))
	})
	mux.HandleFunc("/3/nodes/location", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		w.Write([]byte(`[[80, 8.0, 8.5, 9.0], [70, 7.0, 7.5, 8.0]]`))
	})
	mux.HandleFunc("/3/broken", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "no such skeleton"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *Client {
	return NewClient(config.CatmaidConfig{BaseURL: srv.URL + "/", ProjectID: 3, Token: "secret"}, nil)
}

func TestConnectorDetails(t *testing.T) {
	c := newClient(newServer(t))

	got, err := c.ConnectorDetails(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	assert.True(t, got[0].IsOutputOf(42))
	assert.Equal(t, model.NodeID(420), *got[0].PresynapticNode)
	assert.Equal(t, []model.NeuronID{7, 8}, got[0].PostsynapticTo)
	require.Len(t, got[0].PostsynapticNodes, 2)
	assert.Equal(t, model.NodeID(70), *got[0].PostsynapticNodes[0])
	assert.Nil(t, got[0].PostsynapticNodes[1])

	assert.Nil(t, got[1].PresynapticTo)
	assert.Nil(t, got[1].PresynapticNode)
}

func TestConnectorDetails_None(t *testing.T) {
	c := newClient(newServer(t))

	got, err := c.ConnectorDetails(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNodeLocations(t *testing.T) {
	c := newClient(newServer(t))

	got, err := c.NodeLocations(context.Background(), []model.NodeID{70, 80})
	require.NoError(t, err)
	assert.Equal(t, []model.Point{{X: 7, Y: 7.5, Z: 8}, {X: 8, Y: 8.5, Z: 9}}, got)

	_, err = c.NodeLocations(context.Background(), []model.NodeID{71})
	assert.ErrorContains(t, err, "node 71")
}

func TestDo_Errors(t *testing.T) {
	srv := newServer(t)
	c := newClient(srv)

	_, err := c.do(context.Background(), http.MethodGet, "broken", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "no such skeleton", apiErr.Body)

	_, err = c.do(context.Background(), http.MethodGet, "missing", nil)
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
