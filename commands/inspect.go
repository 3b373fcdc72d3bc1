package commands

import (
	"context"
	"io"

	"github.com/penwyp/go-gpio-trace/internal/analyzer"
	"github.com/penwyp/go-gpio-trace/internal/core/trace"
	"github.com/penwyp/go-gpio-trace/internal/data/watcher"
	"github.com/penwyp/go-gpio-trace/internal/presentation/formatter"
	"github.com/penwyp/go-gpio-trace/internal/util"
	"github.com/spf13/cobra"
)

var (
	inspectFormat string
	inspectFollow bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE...",
	Short: "Summarize one or more trace files",
	Long: `Parses trace files and prints the number of transitions, replay duration,
time spent high and low, and the shortest and longest pulse.

With --follow the summary is printed again whenever a file changes, e.g.
while "record" is writing it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFormat, "output", "o", "table",
		"Output format (table, json, csv)")
	inspectCmd.Flags().BoolVarP(&inspectFollow, "follow", "f", false,
		"Re-print the summary whenever a file changes")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := formatter.New(inspectFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := renderSummaries(out, f, args); err != nil {
		return err
	}
	if !inspectFollow {
		return nil
	}

	ctx, stop := interruptContext(cmd.Context())
	defer stop()
	return followSummaries(ctx, out, f, args)
}

func summarizeFiles(paths []string) ([]analyzer.Summary, error) {
	summaries := make([]analyzer.Summary, 0, len(paths))
	for _, path := range paths {
		t, err := trace.ParseFile(path)
		if err != nil {
			return nil, err
		}
		s := analyzer.Summarize(t)
		s.Source = path
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func renderSummaries(w io.Writer, f formatter.Formatter, paths []string) error {
	summaries, err := summarizeFiles(paths)
	if err != nil {
		return err
	}
	return f.Format(w, summaries)
}

func followSummaries(ctx context.Context, w io.Writer, f formatter.Formatter, paths []string) error {
	fw, err := watcher.NewFileWatcher(paths)
	if err != nil {
		return err
	}
	defer fw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events():
			if !ok {
				return nil
			}
			util.LogDebug("Trace changed", util.F("path", event.Path), util.F("op", event.Operation))
			// A file being written may end mid-line; report and wait for the next write.
			if err := renderSummaries(w, f, paths); err != nil {
				util.LogWarnf("Skipping refresh: %v", err)
			}
		}
	}
}
