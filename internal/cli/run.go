package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/drafter/internal/app"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	UndoAll bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Run a Lua script headless and print the result",
		Long: `Run a Lua script without opening the editor, then print the
elements on the canvas and the undo history.

Example:
  drafter run examples/pipeline.lua
  drafter run --undo-all --log-level debug build.lua`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.UndoAll, "undo-all", false, "undo every step before printing")
	return cmd
}

func runScript(cmd *cobra.Command, opts *RunOptions, path string) error {
	appOpts, err := opts.appOptions()
	if err != nil {
		return err
	}
	appOpts.Scripts = append(appOpts.Scripts, path)
	appOpts.LogOutput = cmd.ErrOrStderr()

	application, err := app.New(appOpts)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	if opts.UndoAll {
		stack := application.Stack()
		for stack.CanUndo() {
			if err := stack.Undo(); err != nil {
				return err
			}
		}
	}
	return application.WriteSummary(cmd.OutOrStdout())
}
