package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newsrec",
		Short: "newsrec: content-based article recommendations",
		Long: `newsrec serves "similar articles" and "recommended for you" lists
computed with TF-IDF and cosine similarity over a corpus of published articles.`,
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(importCmd())
	root.AddCommand(similarCmd())
	root.AddCommand(recommendCmd())
	root.AddCommand(popularCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
