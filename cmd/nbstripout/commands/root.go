// Package commands implements the CLI commands for nbstripout.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arobrien/nbstripout/internal/gitfilter"
	"github.com/arobrien/nbstripout/internal/logger"
	"github.com/arobrien/nbstripout/internal/processor"
	"github.com/arobrien/nbstripout/pkg/strip"
)

// defaultExtraKeys are volatile metadata paths stripped on every run, on
// top of whatever the git config and the command line add.
var defaultExtraKeys = []string{
	"metadata.signature",
	"metadata.widgets",
	"cell.metadata.collapsed",
	"cell.metadata.ExecuteTime",
	"cell.metadata.execution",
	"cell.metadata.heading_collapsed",
	"cell.metadata.hidden",
	"cell.metadata.scrolled",
}

// errSilent signals a non-zero exit without an error message.
var errSilent = errors.New("silent")

var rootCmd = &cobra.Command{
	Use:   "nbstripout [flags] [file...]",
	Short: "Strip output from Jupyter and Zeppelin notebooks",
	Long: `nbstripout removes outputs, execution counts and volatile metadata from
notebook files so they diff cleanly under version control.

Files given on the command line are stripped in place; with no files the
notebook is read from stdin and written stripped to stdout, the shape a
git clean filter expects.

Examples:
  # Strip a notebook in place
  nbstripout notebook.ipynb

  # Use in a shell pipeline
  cat notebook.ipynb | nbstripout > stripped.ipynb

  # Strip a Zeppelin note with a foreign extension
  nbstripout -m zeppelin -f note.json

  # Set up the git filter in the current repository
  nbstripout install`,
	Args: cobra.ArbitraryArgs,
	RunE: runStrip,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.nbstripout.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress informational output")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))

	flags := rootCmd.Flags()

	flags.Bool("keep-count", false, "do not strip the execution count/prompt number")
	flags.Bool("keep-output", false, "do not strip output (default: defer to notebook metadata)")
	flags.StringSlice("extra-keys", nil, "extra keys to strip, e.g. metadata.foo or cell.metadata.bar")
	flags.Bool("drop-empty-cells", false, "remove cells where source is empty or whitespace")
	flags.StringSlice("drop-tagged-cells", nil, "cell tags that remove an entire cell")
	flags.Bool("strip-init-cells", false, "strip output from cells with init_cell: true metadata")
	flags.String("max-size", "0", "keep outputs smaller than SIZE (e.g. 100K, 1M)")
	flags.StringP("mode", "m", processor.ModeJupyter, "notebook format: jupyter or zeppelin (with -f)")
	flags.BoolP("force", "f", false, "strip files regardless of extension")
	flags.Bool("dry-run", false, "print which notebooks would have been stripped")
	flags.BoolP("textconv", "t", false, "print stripped files to stdout instead of rewriting them")

	_ = viper.BindPFlag("keep_count", flags.Lookup("keep-count"))
	_ = viper.BindPFlag("drop_empty_cells", flags.Lookup("drop-empty-cells"))
	_ = viper.BindPFlag("strip_init_cells", flags.Lookup("strip-init-cells"))
	_ = viper.BindPFlag("max_size", flags.Lookup("max-size"))
	_ = viper.BindPFlag("mode", flags.Lookup("mode"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".nbstripout")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("NBSTRIPOUT")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

func runStrip(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})
	opts, err := stripOptions(cmd)
	if err != nil {
		return err
	}

	mode := viper.GetString("mode")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	textconv, _ := cmd.Flags().GetBool("textconv")

	p, err := processor.New(processor.Config{
		Mode:     mode,
		Force:    force,
		DryRun:   dryRun,
		Textconv: textconv,
		Strip:    opts,
	})
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return p.ProcessStream(os.Stdin, os.Stdout)
	}
	for _, path := range args {
		if err := p.ProcessFile(path); err != nil {
			return err
		}
	}
	return nil
}

// stripOptions assembles the engine options from flags, config file and
// the git filter.nbstripout.extrakeys setting.
func stripOptions(cmd *cobra.Command) (strip.Options, error) {
	flags := cmd.Flags()

	// keep-output is tri-state: unset defers to the notebook's metadata.
	var keepOutput *bool
	if flags.Changed("keep-output") {
		v, _ := flags.GetBool("keep-output")
		keepOutput = strip.Bool(v)
	} else if viper.InConfig("keep_output") {
		keepOutput = strip.Bool(viper.GetBool("keep_output"))
	}

	maxSizeRaw := viper.GetString("max_size")
	var maxSize int
	if s := strings.TrimSpace(maxSizeRaw); s != "" && s != "0" {
		bytes, err := humanize.ParseBytes(s)
		if err != nil {
			return strip.Options{}, fmt.Errorf("invalid max-size %q: %w", maxSizeRaw, err)
		}
		maxSize = int(bytes)
	}

	extraKeys := append([]string(nil), defaultExtraKeys...)
	extraKeys = append(extraKeys, gitfilter.New().ExtraKeys(cmd.Context())...)
	flagKeys, _ := flags.GetStringSlice("extra-keys")
	for _, key := range flagKeys {
		extraKeys = append(extraKeys, strings.Fields(key)...)
	}

	var dropTags []string
	tagValues, _ := flags.GetStringSlice("drop-tagged-cells")
	for _, tag := range tagValues {
		dropTags = append(dropTags, strings.Fields(tag)...)
	}

	return strip.Options{
		KeepOutput:      keepOutput,
		KeepCount:       viper.GetBool("keep_count"),
		ExtraKeys:       extraKeys,
		DropEmptyCells:  viper.GetBool("drop_empty_cells"),
		DropTaggedCells: dropTags,
		StripInitCells:  viper.GetBool("strip_init_cells"),
		MaxSize:         maxSize,
	}, nil
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}
