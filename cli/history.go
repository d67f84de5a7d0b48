package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/history"
)

func newHistoryCmd(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse, export and manage your local chat history",
	}
	cmd.AddCommand(
		newHistorySessionsCmd(getApp),
		newHistoryShowCmd(getApp),
		newHistoryStatsCmd(getApp),
		newHistoryExportCmd(getApp),
		newHistoryImportCmd(getApp),
		newHistoryClearCmd(getApp),
	)
	return cmd
}

func newHistorySessionsCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "sessions",
		Short: "List past sessions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			sessions := a.history.Sessions(cmd.Context())
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No chat history yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTITLE\tSTARTED\tMESSAGES")
			for i, s := range sessions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", i+1, s.Title, s.StartTime.Local().Format("2006-01-02 15:04"), len(s.Messages))
			}
			return w.Flush()
		},
	})
}

func newHistoryShowCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "show <number>",
		Short: "Show one session by its number in 'history sessions'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
				return fmt.Errorf("invalid session number %q", args[0])
			}
			sessions := getApp().history.Sessions(cmd.Context())
			if n < 1 || n > len(sessions) {
				return fmt.Errorf("no session %d (have %d)", n, len(sessions))
			}

			s := sessions[n-1]
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(s.Title))
			for _, m := range s.Messages {
				fmt.Fprintln(out, renderMessage(m))
			}
			return nil
		},
	})
}

func newHistoryStatsCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "stats",
		Short: "Show history statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := getApp().history.Stats(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total messages: %d\n", st.TotalMessages)
			fmt.Fprintf(out, "Your messages:  %d\n", st.UserMessages)
			fmt.Fprintf(out, "Bot messages:   %d\n", st.BotMessages)
			fmt.Fprintf(out, "Sessions:       %d\n", st.TotalSessions)
			if st.OldestMessage != nil {
				fmt.Fprintf(out, "Oldest:         %s\n", st.OldestMessage.Local().Format(time.RFC1123))
			}
			if st.NewestMessage != nil {
				fmt.Fprintf(out, "Newest:         %s\n", st.NewestMessage.Local().Format(time.RFC1123))
			}
			return nil
		},
	})
}

func newHistoryExportCmd(getApp func() *app) *cobra.Command {
	var formatName, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export history as JSON, YAML or Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := getApp()
			format := domain.ExportFormat(formatName)
			if output == "" {
				return a.history.Export(cmd.Context(), format, cmd.OutOrStdout())
			}
			if err := exportToFile(cmd.Context(), a.history, format, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported history to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", "json", "Export format: json, yaml, markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	return needsApp(cmd)
}

func newHistoryImportCmd(getApp func() *app) *cobra.Command {
	return needsApp(&cobra.Command{
		Use:   "import <file>",
		Short: "Replace history with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer f.Close()

			if !getApp().history.Import(cmd.Context(), f) {
				return errors.New("import failed: file is not a chat history export")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History imported.")
			return nil
		},
	})
}

// createFile opens an export destination.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// exportToFile writes the export to path. A failed close is reported, since
// buffered data may not have reached the disk.
func exportToFile(ctx context.Context, h *history.Store, format domain.ExportFormat, path string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to write output file: %w", closeErr)
		}
	}()
	return h.Export(ctx, format, f)
}

func newHistoryClearCmd(getApp func() *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all local chat history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear history without --yes")
			}
			if !getApp().history.Clear(cmd.Context()) {
				return errors.New("failed to clear history")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return needsApp(cmd)
}
