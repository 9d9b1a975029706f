package model

import (
	"errors"
	"fmt"
	"strings"
)

// NeuronID identifies a segmented root or a traced skeleton in the source dataset.
type NeuronID int64

// NodeID identifies a single skeleton treenode.
type NodeID int64

var ErrInvalidDirection = errors.New("direction must be \"pre\" or \"post\"")

// Direction selects which side of a synapse is the partner.
// Pre asks for a neuron's presynaptic (upstream) partners, Post for its downstream ones.
type Direction string

const (
	Pre  Direction = "pre"
	Post Direction = "post"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Pre, Post:
		return d, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidDirection, s)
	}
}

func (d Direction) Valid() bool {
	return d == Pre || d == Post
}

// PartnerOf returns the column holding the partner identifier for this direction.
func (d Direction) PartnerOf(s Synapse) NeuronID {
	if d == Pre {
		return s.PrePartnerID
	}
	return s.PostPartnerID
}

type Synapse struct {
	ID            int64    `json:"id"`
	PrePartnerID  NeuronID `json:"pre_pt_root_id"`
	PostPartnerID NeuronID `json:"post_pt_root_id"`
	Size          int64    `json:"size,omitempty"`
	Position      *Point   `json:"ctr_pt_position,omitempty"`
}

// SynapseTable is an ordered set of synapse records. Methods never modify the receiver.
type SynapseTable struct {
	Rows []Synapse `json:"rows"`
}

func NewSynapseTable(rows ...Synapse) SynapseTable {
	return SynapseTable{Rows: append([]Synapse(nil), rows...)}
}

func (t SynapseTable) Len() int {
	return len(t.Rows)
}

// Append returns a new table holding t's rows followed by other's.
func (t SynapseTable) Append(other SynapseTable) SynapseTable {
	rows := make([]Synapse, 0, len(t.Rows)+len(other.Rows))
	rows = append(rows, t.Rows...)
	rows = append(rows, other.Rows...)
	return SynapseTable{Rows: rows}
}

// PartnerCounts tallies occurrences of each partner identifier in the table.
func (t SynapseTable) PartnerCounts(d Direction) map[NeuronID]int {
	counts := make(map[NeuronID]int)
	for _, s := range t.Rows {
		counts[d.PartnerOf(s)]++
	}
	return counts
}

// Filter returns the rows for which keep reports true, in order.
func (t SynapseTable) Filter(keep func(Synapse) bool) SynapseTable {
	var rows []Synapse
	for _, s := range t.Rows {
		if keep(s) {
			rows = append(rows, s)
		}
	}
	return SynapseTable{Rows: rows}
}

type PartnerCount struct {
	PartnerID NeuronID `json:"partner_id"`
	Count     int      `json:"count"`
}
