package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"taskhub-backend/internal/suggest"
)

var Version = "dev"

type serviceOpener func(ctx context.Context) (*suggest.Service, func(), error)

func newRootCmd(open serviceOpener) *cobra.Command {
	var asJSON bool

	rootCmd := &cobra.Command{
		Use:           "suggest",
		Short:         "Print task suggestions from the task database",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output as JSON")

	// run opens the engine for the duration of one command.
	run := func(cmd *cobra.Command, fn func(ctx context.Context, svc *suggest.Service) (any, error)) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		svc, closeFn, err := open(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		out, err := fn(ctx, svc)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), out, asJSON)
	}

	rootCmd.AddCommand(wordsCmd(run))
	rootCmd.AddCommand(clustersCmd(run))
	rootCmd.AddCommand(combinedCmd(run))
	return rootCmd
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc *suggest.Service) (any, error)) error

func wordsCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "Frequent words and follow-ups among completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *suggest.Service) (any, error) {
				return svc.WordAndAdjacencySuggestions(ctx)
			})
		},
	}
}

func clustersCmd(run runner) *cobra.Command {
	var (
		threshold float64
		topK      int
	)
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Groups of tasks with similar descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *suggest.Service) (any, error) {
				// unset flags fall back to the environment settings
				if !cmd.Flags().Changed("threshold") {
					threshold = svc.Config().Threshold
				}
				if !cmd.Flags().Changed("top-k") {
					topK = svc.Config().TopK
				}
				return svc.SimilarityClusters(ctx, threshold, topK)
			})
		},
	}
	defaults := suggest.DefaultConfig()
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", defaults.Threshold, "similarity threshold in [0, 1]")
	cmd.Flags().IntVarP(&topK, "top-k", "k", defaults.TopK, "maximum clusters")
	return cmd
}

func combinedCmd(run runner) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "combined",
		Short: "Cluster suggestions merged with the completion-time signal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *suggest.Service) (any, error) {
				if !cmd.Flags().Changed("count") {
					count = svc.Config().TargetCount
				}
				return svc.CombinedSuggestions(ctx, count)
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", suggest.DefaultConfig().TargetCount, "maximum suggestions")
	return cmd
}

func render(w io.Writer, out any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch v := out.(type) {
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case [][]string:
		for _, c := range v {
			fmt.Fprintln(w, strings.Join(c, ", "))
		}
	}
	return nil
}
