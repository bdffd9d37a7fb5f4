// Command midlo-share serves the link previews for shared midlo searches and
// places on its own, without the terminal client.
package main

import (
	"fmt"
	"os"

	"midlo/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewShareServerCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
