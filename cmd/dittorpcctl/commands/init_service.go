package commands

import (
	"fmt"

	"github.com/marmos91/dittorpc/client"
	"github.com/marmos91/dittorpc/examples/services"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Call the init service's Initialize and CheckInitialized procedures",
}

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Mark the init service as initialized",
	Args:  cobra.NoArgs,
	RunE:  runInitialize,
}

var checkInitializedCmd = &cobra.Command{
	Use:   "check-initialized",
	Short: "Report whether the init service has been initialized",
	Args:  cobra.NoArgs,
	RunE:  runCheckInitialized,
}

func init() {
	initCmd.AddCommand(initializeCmd)
	initCmd.AddCommand(checkInitializedCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewVoidResult()
	client.SendVoid(c, services.InitInstanceID, services.ProcedureInitialize, result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("Initialize failed")
	}

	return nil
}

func runCheckInitialized(cmd *cobra.Command, args []string) error {
	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewResult[bool]()
	client.SendVoid(c, services.InitInstanceID, services.ProcedureCheckInitialized, result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("CheckInitialized failed")
	}

	cmd.Println(result.Value())
	return nil
}
