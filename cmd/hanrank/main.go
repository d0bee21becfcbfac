// hanrank ranks the trending keywords of a Korean headline batch.
package main

import (
	"os"

	"github.com/cognicore/hanrank/cmd/hanrank/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
