package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/hello"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hello",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hello version %s\n", strings.TrimSpace(hello.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
