package promptsan

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		// No config or logger needed to print a script.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
promptsan completion bash > /etc/bash_completion.d/promptsan

# Zsh
promptsan completion zsh > "${fpath[1]}/_promptsan"

# Fish
promptsan completion fish > ~/.config/fish/completions/promptsan.fish

# PowerShell
promptsan completion powershell > $PROFILE\promptsan.ps1
`,
	}
	rootCmd.AddCommand(cmd)
}
