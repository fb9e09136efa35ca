// Command numctl runs maintenance tasks against the inventory database:
// schema migrations, admin seeding, bulk imports and a stats summary.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
