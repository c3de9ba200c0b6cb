package docgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soundprediction/docgraph/pkg/config"
	"github.com/soundprediction/docgraph/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [question...]",
	Short: "Ask a question against the concept graph",
	Long: `Ask a question against the concept graph. The mode flag selects the
retrieval strategy: "local" surfaces specific concepts, documents, and a
supporting excerpt; "global" synthesizes an answer from community-level
aggregates; "auto" picks one from the question's wording.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var queryMode string

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVar(&queryMode, "mode", "auto", "query mode (auto, local, global)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	mode := types.QueryMode(queryMode)
	switch mode {
	case types.AutoMode, types.LocalMode, types.GlobalMode:
	default:
		return fmt.Errorf("invalid mode %q: must be auto, local, or global", queryMode)
	}

	client, _, err := initializeClient(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Close(ctx)

	question := strings.Join(args, " ")
	answer, err := client.Query(ctx, question, mode)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] %s\n", answer.Mode, answer.Text)
	if len(answer.Concepts) > 0 {
		fmt.Printf("concepts:  %s\n", strings.Join(answer.Concepts, ", "))
	}
	if len(answer.Documents) > 0 {
		fmt.Printf("documents: %s\n", strings.Join(answer.Documents, ", "))
	}
	return nil
}
