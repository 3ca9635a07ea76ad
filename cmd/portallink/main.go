package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/portallink/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "portallink: %v\n", err)
		os.Exit(1)
	}
}
