package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arobrien/nbstripout/internal/render"
	"github.com/arobrien/nbstripout/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().String("format", "text", "output format: text, json, yaml")
}

func runVersion(cmd *cobra.Command, args []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	return render.Render(os.Stdout, format, version.Get(), version.Full)
}
