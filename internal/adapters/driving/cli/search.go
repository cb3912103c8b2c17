package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Show the passages most similar to a query",
	Long: `Embeds the query and lists the closest chunks with their similarity
scores, without asking the LLM.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of passages (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	session, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(cmd, session)

	topK := searchTopK
	if topK == 0 && session.Settings != nil {
		topK = session.Settings.Retrieval.TopK
	}

	results, err := session.Retrieval.Search(cmd.Context(), query, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for _, r := range results {
		// Format: [N] Name (id) score
		cmd.Printf("  [%d] %s (%s) %.3f\n", r.Rank, r.Chunk.Name, r.Chunk.ID, r.Score)
		if r.Chunk.Taxonomy != "" {
			cmd.Printf("      %s\n", r.Chunk.Taxonomy)
		}
		cmd.Printf("      %s\n", truncate(r.Chunk.Text, 160))
		cmd.Println()
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
