package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"edaproxy/internal/config"
	"edaproxy/internal/invocation"
	"edaproxy/internal/remote"
)

// newPayloadCmd prints what a tool invocation would send, without connecting.
func newPayloadCmd() *cobra.Command {
	var showSSH bool

	payloadCmd := &cobra.Command{
		Use:   "payload <tool> [args...]",
		Short: "Print the remote command a tool invocation would run",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			id, err := invocation.Resolve(args, os.Environ(), cwd)
			if err != nil {
				return err
			}

			p := buildPayload(id, cfg)
			if !showSSH {
				fmt.Fprintln(cmd.OutOrStdout(), p)
				return nil
			}

			executor := remote.New(cfg.Connection)
			argv := executor.Command(string(p), remote.Options{X11: cfg.Tools.WantsX11(id.Tool)})
			for _, a := range argv {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}
	// Tool arguments such as -full64 must reach the tool, not cobra.
	payloadCmd.Flags().SetInterspersed(false)
	payloadCmd.Flags().BoolVar(&showSSH, "ssh", false, "Print the full ssh argv, one argument per line")
	return payloadCmd
}

// newConfigCmd prints the effective configuration after defaults are applied.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(configPath)
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
