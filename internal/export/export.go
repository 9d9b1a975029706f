// Package export writes partner and coordinate tables as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/agenthands/synapse/internal/core/model"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case CSV, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

func Synapses(w io.Writer, f Format, table model.SynapseTable) error {
	if f == JSON {
		return writeJSON(w, table.Rows)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "pre_pt_root_id", "post_pt_root_id", "size", "x", "y", "z"}); err != nil {
		return err
	}
	for _, s := range table.Rows {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			strconv.FormatInt(int64(s.PrePartnerID), 10),
			strconv.FormatInt(int64(s.PostPartnerID), 10),
			strconv.FormatInt(s.Size, 10),
			"", "", "",
		}
		if s.Position != nil {
			record[4], record[5], record[6] = formatFloat(s.Position.X), formatFloat(s.Position.Y), formatFloat(s.Position.Z)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Coordinates writes both sides of a connector fetch. A side with no
// connectors is written as JSON null, and omitted from CSV. A side whose
// connectors had no known nodes is an empty list in JSON, and a single row
// with blank x, y and z in CSV.
func Coordinates(w io.Writer, f Format, in, out *model.CoordinateTable) error {
	if f == JSON {
		return writeJSON(w, map[string]*model.CoordinateTable{"inputs": in, "outputs": out})
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"side", "space", "x", "y", "z"}); err != nil {
		return err
	}
	for _, side := range []struct {
		name  string
		table *model.CoordinateTable
	}{{"input", in}, {"output", out}} {
		if side.table == nil {
			continue
		}
		if len(side.table.Points) == 0 {
			if err := cw.Write([]string{side.name, side.table.Space, "", "", ""}); err != nil {
				return err
			}
			continue
		}
		for _, p := range side.table.Points {
			if err := cw.Write([]string{side.name, side.table.Space, formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Z)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func Communities(w io.Writer, f Format, communities []model.Community) error {
	if f == JSON {
		if communities == nil {
			communities = []model.Community{}
		}
		return writeJSON(w, communities)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"community", "neuron_id", "weight"}); err != nil {
		return err
	}
	for _, c := range communities {
		for _, m := range c.Members {
			if err := cw.Write([]string{
				strconv.FormatInt(int64(c.Label), 10),
				strconv.FormatInt(int64(m), 10),
				strconv.Itoa(c.Weight),
			}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSynapses parses CSV written by Synapses.
func ReadSynapses(r io.Reader) (model.SynapseTable, error) {
	cols, records, err := readCSV(r, "id", "pre_pt_root_id", "post_pt_root_id")
	if err != nil {
		return model.SynapseTable{}, err
	}

	rows := make([]model.Synapse, 0, len(records))
	for line, rec := range records {
		syn, err := parseSynapse(rec, cols)
		if err != nil {
			return model.SynapseTable{}, fmt.Errorf("line %d: %w", line+2, err)
		}
		rows = append(rows, syn)
	}
	return model.SynapseTable{Rows: rows}, nil
}

// ReadTreenodes parses rows of id,skeleton_id,x,y,z.
func ReadTreenodes(r io.Reader) ([]model.Treenode, error) {
	cols, records, err := readCSV(r, "id", "skeleton_id", "x", "y", "z")
	if err != nil {
		return nil, err
	}

	nodes := make([]model.Treenode, 0, len(records))
	for line, rec := range records {
		var n model.Treenode
		var id, skid int64
		err := firstError(
			parseInt(rec[cols["id"]], &id),
			parseInt(rec[cols["skeleton_id"]], &skid),
			parseFloat(rec[cols["x"]], &n.Position.X),
			parseFloat(rec[cols["y"]], &n.Position.Y),
			parseFloat(rec[cols["z"]], &n.Position.Z),
		)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		n.ID, n.Skeleton = model.NodeID(id), model.NeuronID(skid)
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// ReadConnectors parses rows of connector_id,presynaptic_to_node,postsynaptic_to_node,
// one row per postsynaptic link. Rows of one connector are merged in order of
// first appearance. A blank node cell is an unknown reference.
func ReadConnectors(r io.Reader) ([]model.Connector, error) {
	cols, records, err := readCSV(r, "connector_id", "presynaptic_to_node", "postsynaptic_to_node")
	if err != nil {
		return nil, err
	}

	var out []model.Connector
	index := make(map[int64]int)
	for line, rec := range records {
		var id int64
		if err := parseInt(rec[cols["connector_id"]], &id); err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		pre, err := optionalNode(rec[cols["presynaptic_to_node"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}
		post, err := optionalNode(rec[cols["postsynaptic_to_node"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+2, err)
		}

		i, seen := index[id]
		if !seen {
			i = len(out)
			index[id] = i
			out = append(out, model.Connector{ID: id})
		}
		c := &out[i]
		if pre != nil {
			if c.PresynapticNode != nil && *c.PresynapticNode != *pre {
				return nil, fmt.Errorf("line %d: connector %d has two presynaptic nodes", line+2, id)
			}
			c.PresynapticNode = pre
		}
		if post != nil {
			c.PostsynapticNodes = append(c.PostsynapticNodes, post)
		}
	}
	return out, nil
}

// readCSV returns the header index and the data rows, checking that every
// required column is present.
func readCSV(r io.Reader, required ...string) (map[string]int, [][]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return map[string]int{}, nil, nil
	}

	cols := make(map[string]int)
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("CSV is missing column %q", name)
		}
	}
	return cols, records[1:], nil
}

func optionalNode(v string) (*model.NodeID, error) {
	if v == "" {
		return nil, nil
	}
	var n int64
	if err := parseInt(v, &n); err != nil {
		return nil, err
	}
	id := model.NodeID(n)
	return &id, nil
}

func parseInt(v string, dst *int64) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func parseSynapse(rec []string, cols map[string]int) (model.Synapse, error) {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return rec[i]
		}
		return ""
	}

	var syn model.Synapse
	var err error
	if syn.ID, err = strconv.ParseInt(field("id"), 10, 64); err != nil {
		return syn, err
	}
	pre, err := strconv.ParseInt(field("pre_pt_root_id"), 10, 64)
	if err != nil {
		return syn, err
	}
	post, err := strconv.ParseInt(field("post_pt_root_id"), 10, 64)
	if err != nil {
		return syn, err
	}
	syn.PrePartnerID, syn.PostPartnerID = model.NeuronID(pre), model.NeuronID(post)

	if v := field("size"); v != "" {
		if syn.Size, err = strconv.ParseInt(v, 10, 64); err != nil {
			return syn, err
		}
	}
	if x, y, z := field("x"), field("y"), field("z"); x != "" && y != "" && z != "" {
		var p model.Point
		if p.X, err = strconv.ParseFloat(x, 64); err != nil {
			return syn, err
		}
		if p.Y, err = strconv.ParseFloat(y, 64); err != nil {
			return syn, err
		}
		if p.Z, err = strconv.ParseFloat(z, 64); err != nil {
			return syn, err
		}
		syn.Position = &p
	}
	return syn, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
