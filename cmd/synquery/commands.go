package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agenthands/synapse/internal/backend"
	"github.com/agenthands/synapse/internal/core"
	"github.com/agenthands/synapse/internal/core/model"
	"github.com/agenthands/synapse/internal/export"
)

func partnersCmd() *cobra.Command {
	var (
		direction string
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "partners [neuron-id...]",
		Short: "Build a thresholded table of synaptic partners",
		Long: `Queries each neuron's synapses and keeps the rows whose partner appears at
least --threshold times in that neuron's result.

  --direction pre   upstream partners (the neuron is postsynaptic)
  --direction post  downstream partners (the neuron is presynaptic)

Example:
  synquery partners --direction pre --threshold 3 648518346486614449`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			dir, err := model.ParseDirection(direction)
			if err != nil {
				return err
			}
			f, err := outputFormat()
			if err != nil {
				return err
			}

			return withAnalyzer(cmd.Context(), func(a *core.Analyzer, _ *backend.Backends) error {
				table, err := a.PartnerTable(cmd.Context(), ids, dir, threshold)
				if err != nil {
					return err
				}
				return export.Synapses(cmd.OutOrStdout(), f, table)
			})
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "pre", "pre or post")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "minimum synapses per partner")
	return cmd
}

func connectorsCmd() *cobra.Command {
	var (
		resolution  []float64
		noTransform bool
	)
	cmd := &cobra.Command{
		Use:   "connectors [skeleton-id]",
		Short: "Fetch input and output synapse coordinates of a skeleton",
		Long: `Fetches the skeleton's connectors and writes input and output coordinates.

A side with no connectors is null in JSON and has no CSV rows. A side whose
connectors have no known treenodes is an empty list in JSON and a single CSV
row with blank x, y and z.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if len(resolution) != 3 {
				return fmt.Errorf("--resolution needs 3 values, got %d", len(resolution))
			}
			f, err := outputFormat()
			if err != nil {
				return err
			}
			res := model.Resolution{resolution[0], resolution[1], resolution[2]}

			return withAnalyzer(cmd.Context(), func(a *core.Analyzer, _ *backend.Backends) error {
				in, out, err := a.ConnectorCoordinates(cmd.Context(), ids[0], res, !noTransform)
				if err != nil {
					return err
				}
				if in == nil {
					logger.Info("skeleton has no input connectors", zap.Int64("skeleton", int64(ids[0])))
				}
				if out == nil {
					logger.Info("skeleton has no output connectors", zap.Int64("skeleton", int64(ids[0])))
				}
				return export.Coordinates(cmd.OutOrStdout(), f, in, out)
			})
		},
	}
	def := model.DefaultResolution
	cmd.Flags().Float64SliceVar(&resolution, "resolution", def[:], "voxel resolution x,y,z")
	cmd.Flags().BoolVar(&noTransform, "no-transform", false, "skip realignment, return voxel coordinates")
	return cmd
}

func communitiesCmd() *cobra.Command {
	var (
		direction string
		threshold int
	)
	cmd := &cobra.Command{
		Use:   "communities [neuron-id...]",
		Short: "Group neurons of a partner table into communities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			dir, err := model.ParseDirection(direction)
			if err != nil {
				return err
			}
			f, err := outputFormat()
			if err != nil {
				return err
			}

			return withAnalyzer(cmd.Context(), func(a *core.Analyzer, _ *backend.Backends) error {
				communities, err := a.PartnerCommunities(cmd.Context(), ids, dir, threshold)
				if err != nil {
					return err
				}
				return export.Communities(cmd.OutOrStdout(), f, communities)
			})
		},
	}
	cmd.Flags().StringVarP(&direction, "direction", "d", "post", "pre or post")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 3, "minimum synapses per partner")
	return cmd
}

func loadCmd() *cobra.Command {
	var indices bool
	cmd := &cobra.Command{
		Use:   "load [synapses.csv]",
		Short: "Load a synapse CSV into Memgraph",
		Long: `Reads a CSV with id, pre_pt_root_id, post_pt_root_id and optional size,x,y,z
columns (the format written by "synquery partners") and merges it into the
Memgraph synapse graph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := readFile(args[0], export.ReadSynapses)
			if err != nil {
				return err
			}

			return withAnalyzer(cmd.Context(), func(_ *core.Analyzer, b *backend.Backends) error {
				if b.Store == nil {
					return fmt.Errorf("load needs a memgraph backend")
				}
				if indices {
					if err := b.Store.BuildIndices(cmd.Context()); err != nil {
						return err
					}
				}
				if err := b.Store.SaveSynapses(cmd.Context(), table); err != nil {
					return err
				}
				logger.Info("loaded synapses", zap.String("file", args[0]), zap.Int("rows", table.Len()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&indices, "indices", true, "create indices before loading")
	return cmd
}

func loadConnectorsCmd() *cobra.Command {
	var indices bool
	cmd := &cobra.Command{
		Use:   "load-connectors [treenodes.csv] [connectors.csv]",
		Short: "Load skeleton treenodes and connectors into Memgraph",
		Long: `Reads treenodes (id,skeleton_id,x,y,z in raw units) and connectors
(connector_id,presynaptic_to_node,postsynaptic_to_node, one row per
postsynaptic link, blank for an unknown node) and merges them into the
Memgraph skeleton graph read by "synquery connectors".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := readFile(args[0], export.ReadTreenodes)
			if err != nil {
				return err
			}
			connectors, err := readFile(args[1], export.ReadConnectors)
			if err != nil {
				return err
			}

			return withAnalyzer(cmd.Context(), func(_ *core.Analyzer, b *backend.Backends) error {
				if b.Store == nil {
					return fmt.Errorf("load-connectors needs a memgraph backend")
				}
				if indices {
					if err := b.Store.BuildIndices(cmd.Context()); err != nil {
						return err
					}
				}
				if err := b.Store.SaveSkeletons(cmd.Context(), nodes, connectors); err != nil {
					return err
				}
				logger.Info("loaded skeletons", zap.Int("treenodes", len(nodes)), zap.Int("connectors", len(connectors)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&indices, "indices", true, "create indices before loading")
	return cmd
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
