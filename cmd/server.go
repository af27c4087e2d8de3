package cmd

import (
	"github.com/spf13/cobra"

	"beatsensei/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Beat-Sensei HTTP server",
	Long:  `Start the sample library HTTP server: search, trending, recommendations, downloads and the sensei chat.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
