// Package main provides the entry point for the catalog agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalog_agent",
	Short: "Cross-retailer product catalog pipeline",
	Long:  "Catalog agent scrapes retailer storefronts, annotates products with an LLM (category, model name, structured specs) and matches equivalent products across two catalogs.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
