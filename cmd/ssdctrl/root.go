package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ssdctrl",
	Short: "ssdctrl simulates the host interface of an NVMe SSD controller.",
	Long: `ssdctrl simulates the host interface of an NVMe SSD controller. ` +
		`A simulated host brings the controller up, runs an I/O workload and ` +
		`shuts it down again. Defaults can be set with SSDCTRL_* variables, ` +
		`also read from a .env file in the working directory.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
