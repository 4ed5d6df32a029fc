package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/drafter/internal/app"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the interactive editor",
		Long: `Open the interactive editor.

Keys:
  n          new shape
  arrows     move the selected shape
  + / -      grow or shrink the selected shape
  tab        select the next shape
  c          connect: press on the source, then on the target
  d          delete the selected shape
  u / r      undo / redo
  l          reload scripts
  q          quit`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts)
		},
	}
}

func runEdit(rootOpts *RootOptions) error {
	opts, err := rootOpts.appOptions()
	if err != nil {
		return err
	}
	application, err := app.New(opts)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	return application.Run()
}
