package main

import (
	"github.com/Defacto2/unarchive/internal/cli"
)

func main() {
	// Execute handles printing and os.Exit internally
	_ = cli.Execute()
}
