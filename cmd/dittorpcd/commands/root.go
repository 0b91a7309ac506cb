// Package commands implements dittorpcd's CLI commands.
package commands

import "github.com/spf13/cobra"

var (
	// Version information injected at build time by main.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	configFile string
)

// rootCmd is the base command when dittorpcd is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "dittorpcd",
	Short: "dittorpcd runs the RPC server",
	Long: `dittorpcd is the server half of a minimal ONC/SunRPC-compatible RPC
runtime. It listens on a TCP port, dispatches pipelined requests to a
registered service table, and writes back framed responses.

Use "dittorpcd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/dittorpc/config.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("dittorpcd %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
