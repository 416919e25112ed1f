package commands

import (
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "evaldesk",
		Short:         "Employee evaluation management service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		NewServeCommand(),
		NewMigrateCommand(),
		NewSeedCommand(),
	)
	return root
}
