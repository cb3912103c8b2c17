package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the question history",
	Long:  `Every answered question is recorded unless history is disabled.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent questions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	for _, c := range []*cobra.Command{historyCmd, historyListCmd} {
		c.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (0 for all)")
		c.Flags().BoolVar(&historyJSON, "json", false, "output entries as JSON")
	}
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// withHistory opens the history for the duration of fn.
func withHistory(fn func(driving.HistoryService) error) error {
	b, err := getBackend()
	if err != nil {
		return err
	}
	svc, release, err := b.History()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("close history: %v", err)
		}
	}()
	return fn(svc)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	return withHistory(func(svc driving.HistoryService) error {
		records, err := svc.List(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list history: %w", err)
		}
		if historyJSON {
			return outputHistoryJSON(cmd, records)
		}
		outputHistoryTable(cmd, records)
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	return withHistory(func(svc driving.HistoryService) error {
		n, err := svc.Clear(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		cmd.Printf("Deleted %d entries.\n", n)
		return nil
	})
}

type historyEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Failed    bool      `json:"failed"`
	Sources   []string  `json:"sources"`
	LatencyMS int64     `json:"latency_ms"`
	AskedAt   time.Time `json:"asked_at"`
}

func outputHistoryJSON(cmd *cobra.Command, records []domain.QueryRecord) error {
	entries := make([]historyEntry, len(records))
	for i, r := range records {
		entries[i] = historyEntry{
			ID:        r.ID,
			Question:  r.Question,
			Answer:    r.Answer,
			Failed:    r.Failed,
			Sources:   r.SourceIDs,
			LatencyMS: r.Latency.Milliseconds(),
			AskedAt:   r.CreatedAt,
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHistoryTable(cmd *cobra.Command, records []domain.QueryRecord) {
	if len(records) == 0 {
		cmd.Println("No questions recorded.")
		return
	}

	for _, r := range records {
		marker := ""
		if r.Failed {
			marker = " (failed)"
		}
		cmd.Printf("%s  %s%s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Question, marker)
		cmd.Printf("    %s\n", truncate(r.Answer, 120))
	}
}
