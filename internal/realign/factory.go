package realign

import (
	"fmt"
	"strings"

	"github.com/agenthands/synapse/internal/config"
	"github.com/agenthands/synapse/internal/core/connectors"
)

func New(cfg config.RealignConfig) (connectors.Realigner, error) {
	target := cfg.Target
	if target == "" {
		target = "fanc4"
	}

	switch strings.ToLower(cfg.Kind) {
	case "", "identity":
		return Identity{Space: target}, nil

	case "affine":
		if len(cfg.Matrix) != 3 {
			return nil, fmt.Errorf("affine realignment needs 3 matrix rows, got %d", len(cfg.Matrix))
		}
		a := Affine{Space: target}
		for i, row := range cfg.Matrix {
			if len(row) != 4 {
				return nil, fmt.Errorf("affine realignment row %d needs 4 values, got %d", i, len(row))
			}
			copy(a.Matrix[i][:], row)
		}
		return a, nil

	default:
		return nil, fmt.Errorf("unsupported realignment kind: %s", cfg.Kind)
	}
}
