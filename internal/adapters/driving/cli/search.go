package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/services"
)

var (
	searchNotebook string
	searchFrom     string
	searchTo       string
	searchLimit    int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed journal entries",
	Long: `Searches the journal index by semantic similarity.
Results can be restricted to one notebook and a date range. With an empty
query the filters alone select entries, useful for listing a notebook's
entries for a week.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchNotebook, "notebook", "", "restrict results to one notebook")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "only entries on or after this date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "only entries on or before this date (YYYY-MM-DD)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := ensureApp(ctx)
	if err != nil {
		return err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	params, err := services.NotebookQuery(query, searchNotebook, searchFrom, searchTo, searchLimit)
	if err != nil {
		return err
	}

	results, err := a.search.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		doc := results[i].Document
		header := doc.Metadata["name"]
		if header == "" {
			header = doc.UID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, header, results[i].Score)
		if category := doc.Metadata["category"]; category != "" {
			cmd.Printf("      Notebook: %s\n", category)
		}
		if doc.Timestamp != nil {
			cmd.Printf("      Date: %s\n", doc.Timestamp.Format(time.DateOnly))
		}
		cmd.Println()
	}
	return nil
}
