package commands

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v2"
	"github.com/spf13/cobra"

	"github.com/pipewright/pipewright/common/models"
)

// ServiceNameCompletion completes a <service-name> argument with the
// directories under --packages-dir that already contain a pipeline file.
func ServiceNameCompletion(packagesDir *string) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 || packagesDir == nil || *packagesDir == "" {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		matches, err := doublestar.Glob(filepath.Join(*packagesDir, "*", models.PipelineFileName))
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var names []string
		for _, match := range matches {
			name := filepath.Base(filepath.Dir(match))
			if strings.HasPrefix(name, toComplete) {
				names = append(names, name)
			}
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
