package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vishalcoc44/Ai-Battlefield/internal/buildconfig"
)

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Scoring and calibration backend for the debate arena",
	Long: "arena serves the debate arena HTTP API: belief tracking, forecast\n" +
		"calibration, de-escalation training, AI debates and group rings.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.Version = buildconfig.Version()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
