// Package main is the ftp-admin CLI entry point
package main

import (
	"fmt"

	"github.com/fl1ckyexe/ftp-admin/src/client/paths"
)

// InitCLI prepares the CLI environment before any command runs.
// Logging is initialized later by the root command, once config and flags are read.
func InitCLI() error {
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("init directories: %w", err)
	}
	return nil
}
