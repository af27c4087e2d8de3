package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"beatsensei/config"
	"beatsensei/db"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis connectivity check",
	Long:  `Verify the Redis connection and run basic read/write round-trips.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis target: %s:%s, DB %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connected.")

		if err := db.TestRedis(); err != nil {
			log.Fatalf("Redis round-trip failed: %v", err)
		}
		fmt.Println("Redis round-trip succeeded.")

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis check complete.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
