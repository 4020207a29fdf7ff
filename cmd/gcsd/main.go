package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const buildVersion = "4.4.0"

var rootCmd = &cobra.Command{
	Use:   "gcsd",
	Short: "Ground control station daemon",
	Long: `gcsd is the vehicle-facing core of the ground station. It decodes
telemetry from every configured link, tracks the fleet, records flight
sessions to the configured storage backend and answers command
instructions arriving over the frontend broker.

Configuration is read from gcsd.cfg.json in the directory given by
--config. Every key has a default, so an empty file is a valid start.`,
	Version: buildVersion,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gcsd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gcsd " + buildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
