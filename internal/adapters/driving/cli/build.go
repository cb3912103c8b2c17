package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
	"github.com/insectopedia/insectopedia/internal/logger"
)

// watchDebounce groups the burst of events an editor produces on save.
const watchDebounce = 500 * time.Millisecond

var buildWatch bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vector index from the corpus",
	Long: `Reads the CSV corpus, splits each record into overlapping chunks, embeds
every chunk and writes the index and metadata files.

Nothing is written unless the whole build succeeds. With --watch the index is
rebuilt whenever the corpus file changes.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when the corpus changes")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	b, err := getBackend()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := buildOnce(ctx, cmd, b); err != nil {
		return err
	}
	if !buildWatch {
		return nil
	}

	settings, err := b.Settings().Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	return watchCorpus(ctx, cmd, settings.Paths.DataPath, func() {
		cmd.Println("Corpus changed, rebuilding...")
		if err := buildOnce(ctx, cmd, b); err != nil {
			cmd.PrintErrf("Error: %v\n", err)
		}
	})
}

func buildOnce(ctx context.Context, cmd *cobra.Command, b Backend) error {
	builder, release, err := b.Builder(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			logger.Warn("release embedding service: %v", err)
		}
	}()

	report, err := builder.Build(ctx, driving.BuildRequest{Progress: progressPrinter(cmd)})
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %d records with %s (%d dimensions) in %s\n",
		report.Chunks, report.Records, report.Manifest.Model, report.Manifest.Dimensions,
		report.Duration.Round(time.Millisecond))
	cmd.Printf("  Index:    %s\n", report.IndexPath)
	cmd.Printf("  Metadata: %s\n", report.MetaPath)
	cmd.Println("Index and metadata saved.")
	return nil
}

// progressPrinter reports embedding progress on stderr when it is a terminal.
func progressPrinter(cmd *cobra.Command) func(done, total int) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	w := cmd.ErrOrStderr()
	return func(done, total int) {
		fmt.Fprintf(w, "\rEmbedding chunks: %d/%d", done, total)
		if done == total {
			fmt.Fprintln(w)
		}
	}
}

// watchCorpus calls rebuild after each burst of changes to path until ctx is done.
// The parent directory is watched so that editors replacing the file are seen.
func watchCorpus(ctx context.Context, cmd *cobra.Command, path string, rebuild func()) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isCorpusChange(event, target) {
				logger.Debug("corpus event: %s", event)
				debounce = time.After(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-debounce:
			debounce = nil
			rebuild()
		}
	}
}

func isCorpusChange(event fsnotify.Event, target string) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
