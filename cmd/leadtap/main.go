package main

import (
	"fmt"
	"os"

	"github.com/mgillard/leadtap/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			if err := runScan(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("leadtap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	// No subcommand → launch TUI
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `leadtap - business lead prospection scanner

Usage:
  leadtap                Launch interactive TUI
  leadtap scan [flags]   Run headless scan
  leadtap version        Show version

Run 'leadtap scan --help' for flags.
`)
}
