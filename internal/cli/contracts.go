package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/locator"
)

func newContractsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "contracts", Short: "Inspect the configured contract list"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list [root]",
		Short: "List configured contracts and where their sources resolve",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(rootArg(args))
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(root)
			if err != nil {
				return err
			}
			loc := locator.New(root, cfg)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCONFIGURED\tRESOLVED")
			for _, e := range cfg.Contracts {
				resolved := "not found"
				if p, ok := loc.Locate(e.Name); ok {
					resolved = loc.Rel(p)
				}
				configured := e.Path
				if configured == "" {
					configured = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, configured, resolved)
			}
			return w.Flush()
		},
	})
	return cmd
}
