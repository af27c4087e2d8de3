package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"beatsensei/config"
	"beatsensei/storage"
)

var uploadObjectName string

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a sample file to the bucket",
	Long:  `Upload a local audio file to the sample bucket and print its public URL.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		path := args[0]
		file, err := os.Open(path)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", path, err)
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			log.Fatalf("Failed to stat %s: %v", path, err)
		}

		objectName := uploadObjectName
		if objectName == "" {
			objectName = filepath.Base(path)
		}

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		url, err := storage.UploadSample(context.Background(), objectName, file, info.Size())
		if err != nil {
			log.Fatalf("Failed to upload %s: %v", path, err)
		}

		fmt.Printf("Uploaded %s (%d bytes)\n", objectName, info.Size())
		fmt.Printf("Public URL: %s\n", url)
	},
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadObjectName, "object", "o", "", "object name in the bucket (defaults to the file name)")
	rootCmd.AddCommand(uploadCmd)
}
