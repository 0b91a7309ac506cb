// Command dittorpcd runs the RPC server: an epoll event loop serving the
// demo services registered in examples/services.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/dittorpc/cmd/dittorpcd/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
