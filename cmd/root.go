package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "erp",
	Short: "ERP backend management CLI",
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewFigure("erp.GO", "", true).Print()
		fmt.Println()
		cmd.Help()
	},
}

// Execute wires registered extension commands onto root and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
