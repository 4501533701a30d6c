package cmds

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/jobbot/pkg/persistence/transcriptstore"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type TranscriptCommand struct {
	*cobra.Command
	env *env
}

func NewTranscriptCommand(e *env) (*cobra.Command, error) {
	c := &TranscriptCommand{env: e}
	cobraCmd := &cobra.Command{
		Use:   "transcript",
		Short: "Browse locally recorded chat transcripts",
	}
	listCmd, err := NewTranscriptListCommand(e)
	if err != nil {
		return nil, err
	}
	if err := buildGlazeCommands(cobraCmd, listCmd); err != nil {
		return nil, err
	}
	cobraCmd.AddCommand(c.newShowCommand())
	cobraCmd.AddCommand(c.newExportCommand())
	c.Command = cobraCmd
	return cobraCmd, nil
}

func (c *TranscriptCommand) openStore() (*transcriptstore.SQLiteStore, error) {
	return openTranscriptStore(c.env.settings.TranscriptDB)
}

func openTranscriptStore(path string) (*transcriptstore.SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("transcript recording is disabled (set --transcript-db)")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "transcript database %s", path)
	}
	dsn, err := transcriptstore.SQLiteDSNForFile(path)
	if err != nil {
		return nil, err
	}
	return transcriptstore.NewSQLiteStore(dsn)
}

func (c *TranscriptCommand) entries(ctx context.Context, sessionID string, limit int) ([]transcriptstore.Entry, error) {
	store, err := c.openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	entries, err := store.List(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.Errorf("no transcript recorded for session %s", sessionID)
	}
	return entries, nil
}

func (c *TranscriptCommand) newShowCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a recorded transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.entries(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
				return renderText(out, entries)
			}

			var md bytes.Buffer
			if err := renderMarkdown(&md, args[0], entries); err != nil {
				return err
			}
			styled, err := glamour.Render(md.String(), "dark")
			if err != nil {
				return errors.Wrap(err, "render transcript")
			}
			_, err = io.WriteString(out, styled)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 1000, "Maximum number of entries")
	return cmd
}

func (c *TranscriptCommand) newExportCommand() *cobra.Command {
	var (
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a recorded transcript as HTML, markdown or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.entries(cmd.Context(), args[0], transcriptstore.NoLimit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Wrapf(err, "create %s", outPath)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			switch format {
			case "html":
				return renderHTML(w, args[0], entries)
			case "markdown", "md":
				return renderMarkdown(w, args[0], entries)
			case "text":
				return renderText(w, entries)
			default:
				return errors.Errorf("unknown format %q (html, markdown, text)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "html", "Export format (html, markdown, text)")
	cmd.Flags().StringVar(&outPath, "out", "", "Write to this file instead of stdout")
	return cmd
}
