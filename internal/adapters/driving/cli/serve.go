package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering HTTP API",
	Long: `Loads the index and serves:

  POST /api/query   form field "question", returns {"answer": ...}
  GET  /api/search  ?q=...&k=..., returns the scored passages
  GET  /healthz     the loaded index manifest

The server stops gracefully on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	session, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(cmd, session)

	addr := serveAddr
	cfg := httpapi.Config{Addr: addr}
	if session.Settings != nil {
		if addr == "" {
			cfg.Addr = session.Settings.Server.Addr
		}
		// Leave room for a full generation call.
		cfg.WriteTimeout = session.Settings.LLM.Timeout + httpapi.DefaultWriteMargin
	}

	server, err := httpapi.NewServer(session.Answer, session.Retrieval, cfg)
	if err != nil {
		return err
	}

	m := session.Retrieval.Manifest()
	cmd.Printf("Serving %d chunks (%s) on http://%s\n", m.Count, m.Model, cfg.Addr)
	if err := server.Run(cmd.Context()); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
