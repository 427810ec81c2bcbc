// Package paths resolves the admin CLI config and log locations.
// Linux/macOS follow XDG-style dot directories, Windows uses APPDATA/LOCALAPPDATA.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	projectOrg  = "fl1ckyexe"
	projectName = "ftp-admin"
)

// ConfigDir returns the CLI config directory
// Linux: ~/.config/fl1ckyexe/ftp-admin/
// Windows: %APPDATA%\fl1ckyexe\ftp-admin\
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), projectOrg, projectName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", projectOrg, projectName)
}

// LogDir returns the CLI log directory
// Linux: ~/.local/log/fl1ckyexe/ftp-admin/
// Windows: %LOCALAPPDATA%\fl1ckyexe\ftp-admin\log\
func LogDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), projectOrg, projectName, "log")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "log", projectOrg, projectName)
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "cli.yml")
}

// LogFile returns the default log file path
func LogFile() string {
	return filepath.Join(LogDir(), "cli.log")
}

// EnsureDirs creates the config and log directories owner-only.
// Called on every startup before any file is written.
func EnsureDirs() error {
	for _, dir := range []string{ConfigDir(), LogDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
		if err := os.Chmod(dir, 0700); err != nil {
			return fmt.Errorf("chmod dir %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureParent creates the parent directory of path
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// ResolveConfigPath resolves the --config flag. Relative names are taken from
// ConfigDir and get a .yml extension when they have none.
func ResolveConfigPath(configFlag string) string {
	if configFlag == "" {
		return ConfigFile()
	}
	p := ExpandHome(configFlag)
	if !filepath.IsAbs(p) {
		p = filepath.Join(ConfigDir(), p)
	}
	return withYAMLExt(p)
}

func withYAMLExt(path string) string {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return path
	case "":
		for _, ext := range []string{".yml", ".yaml"} {
			if _, err := os.Stat(path + ext); err == nil {
				return path + ext
			}
		}
		return path + ".yml"
	default:
		return path
	}
}
