// logplay replays recorded delta logs at a fixed rate as if they were a live feed.
package main

import (
	"os"

	"github.com/ccollicutt/logplay/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
