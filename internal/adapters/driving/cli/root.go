// Package cli implements the insectopedia command line.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Options are the global flags a Backend is built from.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// NoHistory keeps questions out of the persistent history.
	NoHistory bool
}

// Session is a loaded index with the services that query it.
type Session struct {
	Settings  *domain.AppSettings
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	History   driving.HistoryService

	// Close releases the providers and the history database.
	Close func() error
}

// Backend creates the services behind the commands. Services are created
// per command so that a command never contacts a provider it does not use.
type Backend interface {
	// Settings returns the settings service.
	Settings() driving.SettingsService

	// Builder returns an index builder for the current settings and a
	// function releasing its embedding provider.
	Builder(ctx context.Context) (driving.IndexBuilder, func() error, error)

	// Open loads the index and prepares retrieval and answering.
	Open(ctx context.Context) (*Session, error)

	// History opens the query history.
	History() (driving.HistoryService, func() error, error)
}

// BackendFactory creates a Backend from the global flags.
type BackendFactory func(opts Options) (Backend, error)

var (
	verbose    bool
	configDir  string
	noHistory  bool
	newBackend BackendFactory
	backend    Backend
)

var rootCmd = &cobra.Command{
	Use:   "insectopedia",
	Short: "Answer insect questions from a local encyclopedia",
	Long: `InsectoPedia answers insect-related questions from a CSV encyclopedia.

Build the index once with 'insectopedia build', then ask questions from the
command line, the terminal UI, the HTTP API or an MCP client.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	flags.StringVar(&configDir, "config-dir", "", "configuration directory (default $INSECTOPEDIA_HOME or ~/.insectopedia)")
	flags.BoolVar(&noHistory, "no-history", false, "do not record questions in the history")
}

// SetVersion sets the version reported by 'insectopedia version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBackendFactory sets how commands obtain their services.
func SetBackendFactory(f BackendFactory) {
	newBackend = f
	backend = nil
}

// Execute runs the root command with ctx. Command output goes to stdout;
// cobra would otherwise print it on stderr.
func Execute(ctx context.Context) error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

// getBackend creates the backend on first use, after flags are parsed.
func getBackend() (Backend, error) {
	if backend != nil {
		return backend, nil
	}
	if newBackend == nil {
		return nil, errors.New("backend not configured")
	}
	b, err := newBackend(Options{ConfigDir: configDir, NoHistory: noHistory})
	if err != nil {
		return nil, err
	}
	backend = b
	return backend, nil
}

// openSession loads the index for commands that query it.
func openSession(ctx context.Context) (*Session, error) {
	b, err := getBackend()
	if err != nil {
		return nil, err
	}
	return b.Open(ctx)
}

func closeSession(cmd *cobra.Command, s *Session) {
	if s.Close == nil {
		return
	}
	if err := s.Close(); err != nil {
		cmd.PrintErrf("close: %v\n", err)
	}
}
