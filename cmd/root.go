package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"beatsensei/server"
)

var rootCmd = &cobra.Command{
	Use:   "beatsensei",
	Short: "Beat-Sensei is an audio sample library service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting Beat-Sensei server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
