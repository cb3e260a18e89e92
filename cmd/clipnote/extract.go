package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/editor"
	"github.com/csheth/clipnote/internal/logging"
	"github.com/csheth/clipnote/internal/notes"
	"github.com/csheth/clipnote/internal/selection"
	"github.com/csheth/clipnote/internal/source"
)

type extractOptions struct {
	lines       string
	line        int
	writeSource bool
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Move a line range or paragraph into the notes document",
		Long: `Extract lines from a document without opening the editor.

Examples:
  # Move lines 3 to 7 of draft.md into the configured target
  clipnote extract draft.md --lines 3:7

  # Move the paragraph around line 12 and remove it from draft.md
  clipnote extract draft.md --line 12 --write-source`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.lines, "lines", "", "1-based inclusive line range A:B")
	cmd.Flags().IntVar(&opts.line, "line", 0, "1-based line; its whole paragraph is extracted")
	cmd.Flags().BoolVar(&opts.writeSource, "write-source", false, "remove the extracted text from the source file")
	cmd.MarkFlagsMutuallyExclusive("lines", "line")
	cmd.MarkFlagsOneRequired("lines", "line")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, path string) error {
	provider, err := resolveConfig(root)
	if err != nil {
		return err
	}
	cfg := provider.Current()
	logger := logging.NewConsole(cmd.ErrOrStderr(), cfg.Log.Level)

	doc, err := source.Load(path)
	if err != nil {
		return err
	}
	if opts.writeSource && doc.ReadOnly {
		return fmt.Errorf("%s: %w", path, source.ErrReadOnly)
	}

	buf := editor.NewBuffer(doc.Text)
	rng, err := extractRange(buf, opts)
	if err != nil {
		return err
	}
	buf.SetSelection(rng)

	svc := capture.NewService(notes.FileStore{}, capture.WithLogger(logger))
	result, err := svc.Extract(cmd.Context(), cfg.Capture(), capture.Request{
		SourceLabel: doc.Label,
		Text:        buf.SelectedText(),
	})
	if err != nil {
		return errors.New(capture.Describe(err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), capture.Succeeded(result))

	if opts.writeSource {
		buf.ReplaceSelection("")
		if err := source.Save(doc, buf.Text()); err != nil {
			return fmt.Errorf("entry written but source not updated: %w", err)
		}
		logger.Debug().Str("source", doc.Path).Msg("source updated")
	}
	return nil
}

// extractRange resolves --lines or --line against the buffer.
func extractRange(buf *editor.Buffer, opts *extractOptions) (selection.Range, error) {
	count := buf.LineCount()
	if opts.lines != "" {
		start, end, err := parseLineRange(opts.lines)
		if err != nil {
			return selection.Range{}, err
		}
		if end > count {
			return selection.Range{}, fmt.Errorf("--lines %s: document has %d lines", opts.lines, count)
		}
		return selection.FullLineRange(buf, start-1, end-1), nil
	}
	if opts.line < 1 || opts.line > count {
		return selection.Range{}, fmt.Errorf("--line %d: document has %d lines", opts.line, count)
	}
	return selection.Locate(opts.line-1, buf), nil
}

func parseLineRange(value string) (int, int, error) {
	from, to, ok := strings.Cut(value, ":")
	if !ok {
		to = from
	}
	start, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("--lines %q: %w", value, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("--lines %q: %w", value, err)
	}
	if start < 1 || end < start {
		return 0, 0, fmt.Errorf("--lines %q: want 1 <= A <= B", value)
	}
	return start, end, nil
}
