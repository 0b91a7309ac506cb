// Command dittorpcctl is a demo client driving the services registered by
// dittorpcd's examples/services.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/dittorpc/cmd/dittorpcctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
