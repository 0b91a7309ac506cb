package commands

import (
	"fmt"
	"strconv"

	"github.com/marmos91/dittorpc/client"
	"github.com/marmos91/dittorpc/examples/services"
	"github.com/spf13/cobra"
)

var repeatCmd = &cobra.Command{
	Use:   "repeat <str> <count>",
	Short: "Call the string service's Repeat procedure",
	Args:  cobra.ExactArgs(2),
	RunE:  runRepeat,
}

func runRepeat(cmd *cobra.Command, args []string) error {
	count, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("parse count: %w", err)
	}

	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewStringResult()
	client.SendStringAnd(c, services.StringInstanceID, services.ProcedureRepeat, args[0], int32(count), result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("Repeat(%q, %d) failed", args[0], count)
	}

	cmd.Println(result.Value())
	return nil
}
