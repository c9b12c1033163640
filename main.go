// Command tether binds HTML views to data models.
package main

import (
	"os"

	"github.com/conneroisu/tether/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
