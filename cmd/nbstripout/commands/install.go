package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arobrien/nbstripout/internal/gitfilter"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Set up the git filter and attributes",
	Long: `Register nbstripout as a git clean filter and diff textconv, and add
the matching gitattributes entries.

By default the filter is installed in the current repository; use --global
or --system for the user-wide or system-wide git configuration.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the git filter and attributes",
	Args:  cobra.NoArgs,
	RunE:  runUninstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)

	for _, cmd := range []*cobra.Command{installCmd, uninstallCmd} {
		cmd.Flags().Bool("global", false, "use the global git config (default: local)")
		cmd.Flags().Bool("system", false, "use the system git config (default: local)")
		cmd.Flags().String("attributes", "", "attributes file to modify (default: .git/info/attributes)")
		cmd.MarkFlagsMutuallyExclusive("global", "system")
	}
}

// newManager builds a filter manager from the scope flags shared by the
// install family of commands.
func newManager(cmd *cobra.Command) *gitfilter.Manager {
	scope := gitfilter.ScopeLocal
	if global, _ := cmd.Flags().GetBool("global"); global {
		scope = gitfilter.ScopeGlobal
	}
	if system, _ := cmd.Flags().GetBool("system"); system {
		scope = gitfilter.ScopeSystem
	}
	attrFile, _ := cmd.Flags().GetString("attributes")
	return gitfilter.New(gitfilter.WithScope(scope), gitfilter.WithAttributesFile(attrFile))
}

func runInstall(cmd *cobra.Command, args []string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	return newManager(cmd).Install(cmd.Context(), exe)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	return newManager(cmd).Uninstall(cmd.Context())
}
