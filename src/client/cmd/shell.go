package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var shells = []string{"bash", "zsh", "fish", "powershell", "pwsh"}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Shell integration commands",
}

var completionsCmd = &cobra.Command{
	Use:   "completions [bash|zsh|fish|powershell]",
	Short: "Generate shell completions",
	Long: `Generate a shell completion script. The shell is taken from $SHELL when not given.

Examples:
  ` + getBinaryName() + ` shell completions bash > ~/.local/share/bash-completion/completions/` + getBinaryName() + `
  ` + getBinaryName() + ` shell completions zsh > ~/.zsh/completions/_` + getBinaryName(),
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: shells,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCompletions(cmd.OutOrStdout(), shellArg(args))
	},
}

var shellInitCmd = &cobra.Command{
	Use:   "init [bash|zsh|fish|powershell]",
	Short: "Generate shell init command",
	Long: `Generate a shell init line for eval. Add to your shell rc file:
  eval "$(` + getBinaryName() + ` shell init)"`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: shells,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printInit(cmd.OutOrStdout(), shellArg(args))
	},
}

func init() {
	shellCmd.AddCommand(completionsCmd, shellInitCmd)
	rootCmd.AddCommand(shellCmd)
}

func shellArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return detectShell()
}

// detectShell reads $SHELL, defaulting to bash
func detectShell() string {
	shellPath := os.Getenv("SHELL")
	if shellPath == "" {
		return "bash"
	}
	base := filepath.Base(shellPath)
	if idx := strings.LastIndex(base, "\\"); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".exe")
}

func printCompletions(w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(w, true)
	case "zsh":
		return rootCmd.GenZshCompletion(w)
	case "fish":
		return rootCmd.GenFishCompletion(w, true)
	case "powershell", "pwsh":
		return rootCmd.GenPowerShellCompletionWithDesc(w)
	default:
		return unsupportedShell(shell)
	}
}

func printInit(w io.Writer, shell string) error {
	bin := getBinaryName()
	switch shell {
	case "bash", "zsh":
		fmt.Fprintf(w, "source <(%s shell completions %s)\n", bin, shell)
	case "fish":
		fmt.Fprintf(w, "%s shell completions fish | source\n", bin)
	case "powershell", "pwsh":
		fmt.Fprintf(w, "Invoke-Expression (& %s shell completions powershell | Out-String)\n", bin)
	default:
		return unsupportedShell(shell)
	}
	return nil
}

func unsupportedShell(shell string) error {
	return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish, powershell)", shell)
}
