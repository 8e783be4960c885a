package main

import (
	"os"

	"burako/internal/config"
	"burako/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string

	cfg    *config.GameConfig
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "burako",
	Short: "Burako rules engine tools",
	Long:  `Deal, validate, score and simulate Burako games against the rules engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadGameConfig(configFile); err != nil {
			return err
		}
		cfg = config.GetGameConfig()
		level := cfg.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), "burako", level)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (json or yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.AddCommand(newDealCmd(), newValidateCmd(), newDisplayCmd(), newScoreCmd(), newPlayCmd(), newWatchCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
