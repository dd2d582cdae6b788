package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/buildinfo"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/logging"
)

// cfgFile is the optional YAML config file; environment values win over it.
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "embed-broker",
	Short: fmt.Sprintf("AI/BI embed token broker (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `embed-broker exchanges a privileged service credential for
narrowly-scoped, viewer-bound dashboard tokens that are safe to hand
to an untrusted frontend embedding a published AI/BI dashboard.`,
	Version: buildinfo.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(nil)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Optional YAML configuration file (environment values take precedence)")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	viper.SetEnvPrefix("EMBED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
