// Package main implements the clipnote CLI: an editor that moves selected
// paragraphs into a notes document, plus headless helpers.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/clipnote/internal/capture"
	"github.com/csheth/clipnote/internal/config"
	"github.com/csheth/clipnote/internal/logging"
	"github.com/csheth/clipnote/internal/notes"
	"github.com/csheth/clipnote/internal/source"
	"github.com/csheth/clipnote/internal/tui"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath  string
	noAltScreen bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "clipnote [file]",
		Short: "Move paragraphs from a document into your notes",
		Long: `clipnote opens a text document in a terminal editor. Select a paragraph
with the select-all key (press it again for the whole document), then extract
it: the text is stamped with its source and the current UTC time and spliced
into the configured notes document.

Examples:
  # Edit a draft and move paragraphs into the default inbox.md
  clipnote draft.md

  # Pull passages out of a PDF (the PDF itself is never modified)
  clipnote paper.pdf

  # Use a specific config file
  clipnote --config ./clipnote.yaml draft.md`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, args)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/clipnote/config.yaml)")
	cmd.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "disable the alternate screen buffer")

	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

// resolveConfig loads the config named by --config, or the default location.
func resolveConfig(opts *rootOptions) (*config.Provider, error) {
	path := opts.configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return config.NewProvider(path, cfg), nil
}

func runTUI(ctx context.Context, opts *rootOptions, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	provider, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	cfg := provider.Current()
	logger, closer := logging.NewFile(cfg.Log.File, cfg.Log.Level)
	defer closer.Close()

	doc := source.Document{}
	if len(args) == 1 {
		doc, err = source.Load(args[0])
		if err != nil {
			return err
		}
	}
	logger.Info().Str("source", doc.Path).Bool("readOnly", doc.ReadOnly).Str("config", provider.Path()).Msg("starting session")

	svc := capture.NewService(notes.FileStore{}, capture.WithLogger(logger))
	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if !opts.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Source:   doc,
			Settings: provider,
			Capture:  svc,
			Logger:   logger,
		}),
		programOpts...,
	)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := provider.Watch(watchCtx, func(cfg config.Config, err error) {
		program.Send(tui.ConfigReloaded(cfg, err))
	}); err != nil {
		logger.Warn().Err(err).Msg("config watch disabled")
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
