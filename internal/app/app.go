package app

import (
	"github.com/spf13/cobra"

	"github.com/xab-mack/devstatus/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "devstatus",
		Short:         "Generate development status and checklist documents for a Foundry project",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddCommands(root)
	return root
}
