package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askShowContext bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer an insect question",
	Long: `Retrieves the passages most similar to the question and asks the
configured LLM to answer from them.

If the LLM fails, its error message is printed as the answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowContext, "show-context", false, "print the passages sent to the LLM")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	session, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(cmd, session)

	answer, err := session.Answer.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askShowContext {
		cmd.Println("Context:")
		cmd.Println(answer.Context)
		cmd.Println()
	}

	cmd.Println(answer.Text)

	if len(answer.Sources) > 0 {
		names := make([]string, len(answer.Sources))
		for i, r := range answer.Sources {
			names[i] = fmt.Sprintf("%s (%s)", r.Chunk.Name, r.Chunk.ID)
		}
		cmd.Println()
		cmd.Printf("Sources: %s\n", strings.Join(names, ", "))
	}
	return nil
}
