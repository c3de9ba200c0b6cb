package docgraph

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/docgraph/pkg/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [sources...]",
	Short: "Ingest files or URLs into the concept graph",
	Long: `Ingest one or more sources into the concept graph. Each source is a
local file path or an http(s) URL; HTML sources are reduced to readable
text before extraction. A failed source is reported and skipped, it does
not abort the batch.

With the default in-memory store the graph lives only for the duration of
the command; point store.driver at neo4j for a persistent graph.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var ingestDetect bool

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestDetect, "detect", true, "run community detection after ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, logger, err := initializeClient(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Close(ctx)

	result, err := client.IngestSources(ctx, args)
	if err != nil {
		return err
	}

	for _, sr := range result.Results {
		if sr.Ok {
			fmt.Printf("ok   %s (%d concepts, %d bytes)\n",
				sr.Source, sr.Summary.ConceptCount, sr.Summary.Size)
		} else {
			fmt.Printf("fail %s: %s\n", sr.Source, sr.Err)
		}
	}
	fmt.Printf("%d succeeded, %d failed\n", result.Succeeded, result.Failed)

	if ingestDetect && result.Succeeded > 0 {
		count, err := client.DetectCommunities(ctx)
		if err != nil {
			logger.Warn("community detection failed", "error", err)
		} else {
			fmt.Printf("detected %d communities\n", count)
		}
	}
	return nil
}
