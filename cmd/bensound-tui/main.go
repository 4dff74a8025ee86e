package main

import (
	"fmt"
	"os"

	"github.com/velvetear/bensound-downloader/internal/config"
	"github.com/velvetear/bensound-downloader/internal/tui"
)

func main() {
	settings, err := config.Load(config.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
