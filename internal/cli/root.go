// Package cli defines the drafter command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/drafter/internal/app"
	"github.com/dshills/drafter/internal/config"
	"github.com/dshills/drafter/internal/log"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	ConfigPath string
	Scripts    []string
	LogLevel   string
}

// NewRootCommand creates the drafter command tree. Without a subcommand
// it opens the editor.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "drafter",
		Short: "Terminal diagram editor with scriptable, undoable commands",
		Long: `drafter edits box-and-line diagrams in the terminal.

Every edit goes through a command stack with full undo and redo. Lua
scripts can hook any command phase to veto, extend or observe edits.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "",
		"config file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringSliceVarP(&opts.Scripts, "script", "s", nil,
		"Lua script to load (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "",
		"override the configured log level (debug|info|warn|error)")

	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewVersionCommand(version))

	return cmd
}

// appOptions loads the configuration and applies the flags to it.
func (o *RootOptions) appOptions() (app.Options, error) {
	path := o.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return app.Options{}, err
	}
	if o.LogLevel != "" {
		if !log.ValidLevel(o.LogLevel) {
			return app.Options{}, &config.ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: o.LogLevel}
		}
		cfg.Log.Level = o.LogLevel
	}
	return app.Options{Config: cfg, Scripts: o.Scripts}, nil
}
