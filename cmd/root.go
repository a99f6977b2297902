package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"edaproxy/internal/config"
	"edaproxy/internal/logger"
)

// wrapperName is the binary's own name. Invoked under it, the binary is an admin CLI;
// under any other name it proxies that tool to the EDA host.
const wrapperName = "edaproxy"

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the path to the TOML or YAML configuration document.
var configPath string

// newRootCmd builds the admin command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   wrapperName,
		Short: "Transparent remote-execution proxy for EDA tools",
		Long: `edaproxy is symlinked under many tool names (vcs, verdi, dc_shell, ...).
Invoked as one of those names it runs the tool on the EDA host over ssh,
forwarding the terminal, the working directory, whitelisted environment
variables and the exit code. Invoked as edaproxy it manages the symlinks
and helps inspect what would be sent.`,
		SilenceUsage: true,
		Version:      version,

		// PersistentPreRun initializes the logger based on the debug flag.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(debug)
		},
	}

	rootCmd.SetVersionTemplate(wrapperName + " version {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.PathFromEnv(os.LookupEnv), "Path to configuration file")

	rootCmd.AddCommand(newLinksCmd())
	rootCmd.AddCommand(newPayloadCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute dispatches on the invoked name and exits with the resulting status.
func Execute() {
	os.Exit(Main(os.Args))
}

// Main runs the admin CLI when argv[0] is the wrapper itself and the proxy otherwise,
// returning the process exit status.
func Main(argv []string) int {
	if len(argv) > 0 && filepath.Base(argv[0]) == wrapperName {
		rootCmd := newRootCmd()
		rootCmd.SetArgs(argv[1:])
		if err := rootCmd.Execute(); err != nil {
			return 1
		}
		return 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = os.Getenv("PWD")
	}
	return runProxy(argv, os.Environ(), cwd)
}
