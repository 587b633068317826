// Command progcdc captures the change history of nesting programs.
package main

import (
	"fmt"
	"os"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/roach88/progcdc/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
