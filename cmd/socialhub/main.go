package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath  string
	memoryStore bool
)

var rootCmd = &cobra.Command{
	Use:           "socialhub",
	Short:         "Post one message to Bluesky, X and Threads",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.socialhub/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&memoryStore, "memory-store", false, "keep credentials in memory instead of the system keychain (development only)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(exitCode(err))
	}
}
