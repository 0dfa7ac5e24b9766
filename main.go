// Main entry point for the application
package main

import (
	"log"
	"os"

	"viewonly/internal/ui"
)

func main() {
	// Set the logger prefix
	log.SetPrefix("[viewonly] ")

	if err := ui.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
