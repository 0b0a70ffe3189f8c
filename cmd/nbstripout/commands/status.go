package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arobrien/nbstripout/internal/gitfilter"
	"github.com/arobrien/nbstripout/internal/render"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the git filter is installed",
	Long: `Report whether nbstripout is installed in the selected git configuration
scope and, if so, the filter, diff and attributes settings.

Exits with code 0 when installed and 1 otherwise. With --quiet nothing is
printed, which makes the command usable as an is-installed check in
scripts.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().Bool("global", false, "use the global git config (default: local)")
	statusCmd.Flags().Bool("system", false, "use the system git config (default: local)")
	statusCmd.Flags().String("attributes", "", "attributes file to inspect")
	statusCmd.Flags().String("format", "text", "output format: text, json, yaml")
	statusCmd.MarkFlagsMutuallyExclusive("global", "system")
}

func runStatus(cmd *cobra.Command, args []string) error {
	quiet := viper.GetBool("quiet")

	formatStr, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	info, err := newManager(cmd).Status(cmd.Context())
	if err != nil {
		return err
	}

	if quiet {
		if !info.Installed {
			return errSilent
		}
		return nil
	}

	if err := render.Render(os.Stdout, format, info, func() string { return statusText(info) }); err != nil {
		return err
	}
	if !info.Installed {
		return errSilent
	}
	return nil
}

func statusText(info gitfilter.Info) string {
	if !info.Installed {
		return fmt.Sprintf("nbstripout is not installed %s", info.Location)
	}
	rows := [][2]string{
		{"clean", info.Clean},
		{"smudge", info.Smudge},
		{"diff", info.Diff},
	}
	if info.ExtraKeys != "" {
		rows = append(rows, [2]string{"extrakeys", info.ExtraKeys})
	}
	if info.Attributes != "" {
		rows = append(rows, [2]string{"attributes", info.Attributes})
	}
	if info.DiffAttributes != "" {
		rows = append(rows, [2]string{"diff attributes", info.DiffAttributes})
	}
	return fmt.Sprintf("nbstripout is installed %s\n%s",
		info.Location, render.KeyValueTable("Filter", rows))
}
