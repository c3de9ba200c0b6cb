package docgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/docgraph/pkg/config"
)

var communitiesCmd = &cobra.Command{
	Use:   "communities",
	Short: "Detect and list concept communities",
	RunE:  runCommunities,
}

var communitiesLimit int

func init() {
	rootCmd.AddCommand(communitiesCmd)
	communitiesCmd.Flags().IntVar(&communitiesLimit, "limit", 0, "maximum communities to list (0 = default)")
}

func runCommunities(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, _, err := initializeClient(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Close(ctx)

	count, err := client.DetectCommunities(ctx)
	if err != nil {
		return fmt.Errorf("community detection failed: %w", err)
	}
	fmt.Printf("detected %d communities\n", count)

	communities, err := client.Communities(ctx, communitiesLimit)
	if err != nil {
		return err
	}
	for _, summary := range communities {
		fmt.Printf("%-16s %4d  %s\n", summary.Label, summary.Size,
			strings.Join(summary.Members, ", "))
	}
	return nil
}
