// Command dupfind reports the values that occur more than once in a stream.
package main

import (
	"os"

	"github.com/roach88/dupfind/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.NewRootCommand()))
}
