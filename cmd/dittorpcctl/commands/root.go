// Package commands implements dittorpcctl's CLI commands.
package commands

import (
	"github.com/marmos91/dittorpc/client"
	"github.com/spf13/cobra"
)

var (
	host string
	port int
)

// rootCmd is the base command when dittorpcctl is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "dittorpcctl",
	Short: "dittorpcctl drives the dittorpcd demo services",
	Long: `dittorpcctl is a demo client for the RPC runtime's example services:
a hash, a string repeater, a sign-preservation check, a key/value store,
and an initialization flag.

Use "dittorpcctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "127.0.0.1", "dittorpcd host to connect to")
	rootCmd.PersistentFlags().IntVar(&port, "port", 9000, "dittorpcd port to connect to")

	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(repeatCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(kvCmd)
	rootCmd.AddCommand(initCmd)
}

// dial connects a client.Client to the configured host:port.
func dial() (*client.Client, error) {
	return client.Connect(client.Config{Host: host, Port: port})
}
