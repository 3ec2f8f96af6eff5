package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "uirecorder",
	Short: "Record browser interactions as described, replayable test steps",
	Long: "uirecorder drives a Chrome page, turns every user action into a step with a\n" +
		"human-readable description and a stable XPath locator, and stores the steps\n" +
		"per recording session.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.Version = version
}
