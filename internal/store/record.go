package store

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/synapse/internal/core/model"
)

func requiredInt(rec *neo4j.Record, key string) (int64, error) {
	v, ok := optionalInt(rec, key)
	if !ok {
		return 0, fmt.Errorf("record is missing integer column %q", key)
	}
	return v, nil
}

func optionalInt(rec *neo4j.Record, key string) (int64, bool) {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func optionalFloat(rec *neo4j.Record, key string) (float64, bool) {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func optionalPoint(rec *neo4j.Record) (model.Point, bool) {
	x, okX := optionalFloat(rec, "x")
	y, okY := optionalFloat(rec, "y")
	z, okZ := optionalFloat(rec, "z")
	if !okX || !okY || !okZ {
		return model.Point{}, false
	}
	return model.Point{X: x, Y: y, Z: z}, true
}

func listOf(rec *neo4j.Record, key string) []any {
	raw, ok := rec.Get(key)
	if !ok || raw == nil {
		return nil
	}
	list, _ := raw.([]any)
	return list
}
