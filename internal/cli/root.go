// Package cli implements the layerconf command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/randalmurphal/layerconf/internal/store"
)

var (
	cfgFile string
	verbose bool
	jsonOut bool
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "layerconf",
	Short: "Resolve a live configuration file over its defaults",
	Long: `layerconf resolves a live configuration document over a default one.

The live document is the file users edit. The default document ships with the
application and defines every option and its default value. When defaults are
included, options missing from the live document fall back to their defaults
and options the default does not define are ignored.

Supported formats: YAML (.yml, .yaml), JSON (.json), TOML (.toml).

Quick start:
  layerconf show --live config.yml --default defaults/config.yml
  layerconf get database.port
  layerconf missing
  layerconf explain database.port`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		PrintError(err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults()

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "settings file (default is .layerconf.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&jsonOut, "json", false, "output as JSON")
	pf.BoolVar(&noColor, "no-color", false, "disable colored reports")
	pf.String("live", "config.yml", "live configuration document")
	pf.String("default", "", "default configuration document")
	pf.Bool("include-defaults", true, "backfill missing options from the default document")
	pf.Bool("redundant", false, "also report options the default does not define")
	pf.Bool("debug", false, "include failure details in reports")

	bindFlag("live", "live")
	bindFlag("default", "default")
	bindFlag("include_defaults", "include-defaults")
	bindFlag("report_redundant", "redundant")
	bindFlag("debug", "debug")

	// Add subcommands
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newMissingCmd())
	rootCmd.AddCommand(newRedundantCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newExplainCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

// setDefaults registers the settings defaults with viper.
func setDefaults() {
	d := store.DefaultSettings()
	viper.SetDefault("live", "config.yml")
	viper.SetDefault("default", "")
	viper.SetDefault("auto_load", d.AutoLoadOnInit)
	viper.SetDefault("include_defaults", d.IncludeDefaults)
	viper.SetDefault("report_missing", d.ReportMissingOnReload)
	viper.SetDefault("report_redundant", d.ReportRedundantOptions)
	viper.SetDefault("report_new_config", d.ReportNewConfigCreation)
	viper.SetDefault("debug", d.DebugLogging)
	viper.SetDefault("color", d.UseColoring)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".layerconf")
	}

	viper.SetEnvPrefix("LAYERCONF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadSettings builds store settings from flags, environment, and the
// settings file.
func loadSettings() store.Settings {
	return store.Settings{
		AutoLoadOnInit:          viper.GetBool("auto_load"),
		IncludeDefaults:         viper.GetBool("include_defaults"),
		ReportMissingOnReload:   viper.GetBool("report_missing"),
		ReportRedundantOptions:  viper.GetBool("report_redundant"),
		ReportNewConfigCreation: viper.GetBool("report_new_config"),
		DebugLogging:            viper.GetBool("debug"),
		UseColoring:             viper.GetBool("color") && !noColor,
	}
}

func setupLogging(w io.Writer) {
	level := slog.LevelWarn
	if verbose || viper.GetBool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
