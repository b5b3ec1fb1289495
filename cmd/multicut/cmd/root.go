package cmd

import (
	"fmt"
	"os"

	"github.com/lintang-b-s/Multicutx/pkg/logger"
	"github.com/lintang-b-s/Multicutx/pkg/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "multicut",
	Short: "Minimum cost multicut solver",
	Long: `multicut solves minimum cost multicut instances with lazily separated cycle inequalities.

Examples:
  multicut solve -i levels.json -o solved.json
  multicut solve -i levels.yaml.bz2 --engine maxsat --verify
  multicut serve --config ./data`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := util.ReadConfig(configPath); err != nil {
			return err
		}
		cfg := logger.Config{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		}
		if verbose {
			cfg.Level = "debug"
		}
		var err error
		log, err = logger.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.PersistentFlags().String("engine", "bnb", "search engine (bnb, maxsat)")
	rootCmd.PersistentFlags().Int("workers", 4, "engine worker threads")
	rootCmd.PersistentFlags().Duration("time-limit", 0, "engine time limit per instance, 0 for none")
	rootCmd.PersistentFlags().Bool("allow-incumbent", false, "accept the best multicut found when the time limit hits")

	_ = viper.BindPFlag("ENGINE", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("WORKERS", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("TIME_LIMIT", rootCmd.PersistentFlags().Lookup("time-limit"))
	_ = viper.BindPFlag("ALLOW_INCUMBENT", rootCmd.PersistentFlags().Lookup("allow-incumbent"))

	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("multicut version 0.1.0")
	},
}
