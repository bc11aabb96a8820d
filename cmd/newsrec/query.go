package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/config"
	"github.com/kailas-cloud/newsrec/internal/corpus"
	"github.com/kailas-cloud/newsrec/internal/db/sqlite"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/engine"
)

// queryFlags are shared by the offline query commands.
type queryFlags struct {
	corpus string
	limit  int
	json   bool
}

func (q *queryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.corpus, "corpus", "", "path to corpus YAML file")
	cmd.Flags().IntVarP(&q.limit, "limit", "n", engine.DefaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(&q.json, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("corpus")
}

func similarCmd() *cobra.Command {
	var q queryFlags
	var id string
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "List documents similar to one document of a corpus file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := offlineApp(cmd.Context(), q.corpus)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := a.recommend.Similar(cmd.Context(), id, q.limit)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results, q.json)
		},
	}
	q.bind(cmd)
	cmd.Flags().StringVar(&id, "id", "", "document ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func recommendCmd() *cobra.Command {
	var q queryFlags
	var user string
	var fallback bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend documents for a user of a corpus file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := offlineApp(cmd.Context(), q.corpus)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := a.recommend.Recommend(cmd.Context(), user, q.limit)
			if err != nil {
				return err
			}
			if len(results) == 0 && fallback {
				if results, err = a.recommend.Popular(cmd.Context(), q.limit); err != nil {
					return err
				}
			}
			return printResults(cmd.OutOrStdout(), results, q.json)
		},
	}
	q.bind(cmd)
	cmd.Flags().StringVar(&user, "user", "", "user ID")
	cmd.Flags().BoolVar(&fallback, "fallback-popular", false, "list popular documents when nothing can be recommended")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func popularCmd() *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List the most viewed documents of a corpus file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cleanup, err := offlineApp(cmd.Context(), q.corpus)
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := a.recommend.Popular(cmd.Context(), q.limit)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results, q.json)
		},
	}
	q.bind(cmd)
	return cmd
}

// offlineApp loads a corpus file into a private in-memory store.
func offlineApp(ctx context.Context, path string) (*app, func(), error) {
	f, err := corpus.Load(path)
	if err != nil {
		return nil, nil, err
	}

	store, err := sqlite.NewStore(sqlite.MemoryPath)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Config{}
	cfg.ApplyDefaults()
	a := newApp(store, cfg.Engine, zap.NewNop())
	if _, _, err := a.importCorpus(ctx, f); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("load corpus: %w", err)
	}
	return a, store.Close, nil
}

type resultJSON struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

func printResults(w io.Writer, results []recommendation.Result, asJSON bool) error {
	if asJSON {
		out := make([]resultJSON, len(results))
		for i := range results {
			doc := results[i].Document()
			out[i] = resultJSON{ID: doc.ID(), Title: doc.Title(), Score: results[i].Score()}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tTITLE")
	for i := range results {
		doc := results[i].Document()
		fmt.Fprintf(tw, "%s\t%.4f\t%s\n", doc.ID(), results[i].Score(), doc.Title())
	}
	return tw.Flush()
}
