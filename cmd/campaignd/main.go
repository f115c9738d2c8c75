package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ethanrimes/campaign-management-platform/internal/cli"
	internal_http "github.com/ethanrimes/campaign-management-platform/internal/http"
	"github.com/ethanrimes/campaign-management-platform/internal/log"
	internal_storage "github.com/ethanrimes/campaign-management-platform/internal/storage"
)

var rootCmd = &cobra.Command{Use: "campaignd"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the execution trace inspector server",
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		dbConnStr, _ := cmd.Flags().GetString("db")
		if dbConnStr == "" {
			fmt.Println("Error: --db connection string is required")
			os.Exit(1)
		}
		store, err := internal_storage.NewPostgresStore(dbConnStr)
		if err != nil {
			log.GetLogger().Errorf("Failed to connect to store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := internal_http.StartServer(port, store); err != nil {
			log.GetLogger().Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func main() {
	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	rootCmd.PersistentFlags().String("db", "", "Database connection string")
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
