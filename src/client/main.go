package main

import (
	"fmt"
	"os"

	"github.com/fl1ckyexe/ftp-admin/src/client/cmd"
)

func main() {
	if err := InitCLI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd.SetLogInit(func(debug bool) error {
		if err := InitLogging(debug); err != nil {
			// Non-fatal, keep the stderr fallback
			fmt.Fprintf(os.Stderr, "Warning: could not initialize log file: %v\n", err)
		}
		return nil
	})

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
