package main

import (
	"fmt"
	"os"

	"github.com/buddyapp/buddy/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Cli(version); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
