package commands

import (
	"fmt"

	"github.com/marmos91/dittorpc/client"
	"github.com/marmos91/dittorpc/examples/services"
	"github.com/spf13/cobra"
)

var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Call the key/value service's Get and Put procedures",
}

var kvGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a value by key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKVGet,
}

var kvPutCmd = &cobra.Command{
	Use:   "put <key> <value>",
	Short: "Put a value by key",
	Args:  cobra.ExactArgs(2),
	RunE:  runKVPut,
}

func init() {
	kvCmd.AddCommand(kvGetCmd)
	kvCmd.AddCommand(kvPutCmd)
}

func runKVGet(cmd *cobra.Command, args []string) error {
	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewStringResult()
	client.SendString(c, services.KVInstanceID, services.ProcedureKVGet, args[0], result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("Get(%q) failed", args[0])
	}

	cmd.Println(result.Value())
	return nil
}

func runKVPut(cmd *cobra.Command, args []string) error {
	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewVoidResult()
	client.SendString2(c, services.KVInstanceID, services.ProcedureKVPut, args[0], args[1], result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("Put(%q, %q) failed", args[0], args[1])
	}

	return nil
}
