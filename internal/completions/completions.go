package completions

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// Shells lists the supported shells
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// Generate writes the completion script for shell to w
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	var err error
	switch strings.ToLower(shell) {
	case "bash":
		err = root.GenBashCompletionV2(w, true)
	case "zsh":
		err = root.GenZshCompletion(w)
	case "fish":
		err = root.GenFishCompletion(w, true)
	case "powershell":
		err = root.GenPowerShellCompletionWithDesc(w)
	default:
		return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Shells, ", "))
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s completions: %w", shell, err)
	}
	return nil
}
