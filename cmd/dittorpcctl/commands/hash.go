package commands

import (
	"fmt"
	"strconv"

	"github.com/marmos91/dittorpc/client"
	"github.com/marmos91/dittorpc/examples/services"
	"github.com/spf13/cobra"
)

var hashCmd = &cobra.Command{
	Use:   "hash <n>",
	Short: "Call the hash service's DoHash procedure",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func runHash(cmd *cobra.Command, args []string) error {
	n, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("parse n: %w", err)
	}

	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewResult[int32]()
	client.Send(c, services.HashInstanceID, services.ProcedureDoHash, int32(n), result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("DoHash(%d) failed", n)
	}

	cmd.Println(result.Value())
	return nil
}
