package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/config"
	"github.com/kailas-cloud/newsrec/internal/corpus"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
)

func importCmd() *cobra.Command {
	var env, corpusPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a corpus file into the configured store",
		Long: `Writes every document and interaction of a corpus YAML file into the
store configured for --env. Running servers pick the new documents up on their
next engine rebuild.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			f, err := corpus.Load(corpusPath)
			if err != nil {
				return err
			}

			store, err := openStore(cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.WaitForReady(ctx, cfg.Database.Readiness()); err != nil {
				return fmt.Errorf("database not ready: %w", err)
			}

			docs, interactions, err := newApp(store, cfg.Engine, logger).importCorpus(ctx, f)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			logger.Info("Corpus imported",
				zap.String("corpus", corpusPath),
				zap.Int("documents", docs),
				zap.Int("interactions", interactions),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d documents, %d interactions\n", docs, interactions)
			return nil
		},
	}
	cmd.Flags().StringVar(&env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "path to corpus YAML file")
	_ = cmd.MarkFlagRequired("corpus")
	return cmd
}
