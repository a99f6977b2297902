package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"edaproxy/internal/config"
	"edaproxy/internal/installer"
	"edaproxy/internal/state"
)

// newLinksCmd groups the symlink maintenance commands.
func newLinksCmd() *cobra.Command {
	linksCmd := &cobra.Command{
		Use:   "links",
		Short: "Manage the per-tool symlinks pointing at the wrapper",
	}
	linksCmd.AddCommand(newLinksSyncCmd())
	linksCmd.AddCommand(newLinksStatusCmd())
	return linksCmd
}

// newLinksSyncCmd creates/repairs links for every registered tool and drops links for
// tools removed from the config.
func newLinksSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Create or repair one symlink per registered tool (plus delegate)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			st := state.LoadState(cfg.Paths.StateFile)

			report, err := installer.SyncLinks(cfg.Paths, cfg.Tools, st)
			if err != nil {
				return err
			}

			// Save updated state after syncing
			state.SaveState(cfg.Paths.StateFile, st)

			fmt.Fprintf(cmd.OutOrStdout(), "linked %d, skipped %d, failed %d, removed %d\n",
				len(report.Linked), len(report.Skipped), len(report.Failed), len(report.Removed))
			return nil
		},
	}
}

// newLinksStatusCmd prints the state of each tool link without touching anything.
func newLinksStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which tool links are present and point at the wrapper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TOOL\tSTATE\tPATH")
			for _, s := range installer.LinkStatus(cfg.Paths, cfg.Tools) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Tool, s.State, s.Path)
			}
			return w.Flush()
		},
	}
}
