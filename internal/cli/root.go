// Package cli wires the cobra command tree for the sarbot binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	statePath  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "sarbot",
	Short:         "Parabolic SAR paper-trading engine for Binance futures",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "", "path to YAML config (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "state snapshot path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("sarbot (dev)")
		},
	})
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
