package commands

import (
	"fmt"
	"strconv"

	"github.com/marmos91/dittorpc/client"
	"github.com/marmos91/dittorpc/examples/services"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <x> <y>",
	Short: "Call the sign service's TestSign procedure",
	Long: `sign calls TestSign(x int32, y uint32) uint64, packing the
arithmetically-shifted x into the high 32 bits and the logically-shifted
y into the low 32 bits.`,
	Args: cobra.ExactArgs(2),
	RunE: runSign,
}

func runSign(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("parse x: %w", err)
	}
	y, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("parse y: %w", err)
	}

	c, err := dial()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	result := client.NewResult[uint64]()
	client.Send2(c, services.SignInstanceID, services.ProcedureTestSign, int32(x), uint32(y), result)

	if err := c.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if result.HasError() {
		return fmt.Errorf("TestSign(%d, %d) failed", x, y)
	}

	cmd.Printf("0x%016X\n", result.Value())
	return nil
}
