package main

import (
	"log"
	"os"

	"viewonly/internal/ui"
)

func main() {
	log.SetPrefix("[viewonly] ")
	if err := ui.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
