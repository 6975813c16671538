package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Version information, set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app is the state shared by every command.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}
	a.v.SetEnvPrefix("HXBIND")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "hxbind",
		Short: "Inspect and serve hxbind component models",
		Long: `hxbind binds plain data models to HTML form controls.

This tool reads and writes models with property paths, renders component
configurations against a page, and serves model snapshots over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setupLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	_ = a.v.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(a.versionCmd())
	rootCmd.AddCommand(a.getCmd())
	rootCmd.AddCommand(a.setCmd())
	rootCmd.AddCommand(a.renderCmd())
	rootCmd.AddCommand(a.serveCmd())
	return rootCmd
}

func (a *app) setupLogger() error {
	var (
		log *zap.Logger
		err error
	)
	if a.v.GetBool("verbose") {
		log, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		log, err = cfg.Build()
	}
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = log
	return nil
}
