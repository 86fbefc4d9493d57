//go:build !darwin

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var errLaunchAgentUnsupported = fmt.Errorf("LaunchAgent installation is only available on macOS; run \"socialhub daemon\" under your init system instead")

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the socialhub daemon as a LaunchAgent (macOS only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return errLaunchAgentUnsupported
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the socialhub LaunchAgent (macOS only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return errLaunchAgentUnsupported
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
}
