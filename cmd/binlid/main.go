// Command binlid tracks household storage spaces and the items in them.
package main

import (
	"os"

	"github.com/mesh-intelligence/binlid/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
