package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stefan/catalog-agent/internal/catalog"
	"github.com/stefan/catalog-agent/internal/fetch"
	"github.com/stefan/catalog-agent/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a retailer storefront into a raw product CSV",
	Long:  "Walk every category of a supported retailer storefront with a headless browser, extract product cards and write the raw catalog CSV for annotation.",
	RunE:  runScrape,
}

var (
	scrapeSite        string
	scrapeOutputFile  string
	scrapeConcurrency int
	scrapeVerbose     bool
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSite, "site", "", "Retailer site to scrape (anhoch, neptun, tehnomarket)")
	scrapeCmd.Flags().StringVarP(&scrapeOutputFile, "out", "o", "", "Path to output CSV file")
	scrapeCmd.Flags().IntVar(&scrapeConcurrency, "concurrency", scrape.DefaultConcurrency, "Concurrent category walks")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print per-category progress")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(_ *cobra.Command, _ []string) error {
	if scrapeSite == "" {
		return fmt.Errorf("--site is required")
	}
	if scrapeOutputFile == "" {
		scrapeOutputFile = fmt.Sprintf("%s_products.csv", scrapeSite)
	}

	site, err := scrape.SiteByName(scrapeSite)
	if err != nil {
		return err
	}

	ctx := context.Background()
	browser := fetch.NewBrowser(ctx, scrapeVerbose)
	defer browser.Close()

	scraper := scrape.NewScraper(site, browser)
	scraper.Concurrency = scrapeConcurrency
	scraper.Verbose = scrapeVerbose

	records, err := scraper.Run(ctx)
	if err != nil {
		return fmt.Errorf("scraping %s: %w", site.Name, err)
	}

	if err := catalog.WriteRecordsCSV(scrapeOutputFile, records); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Scraped %d products from %s\n", len(records), site.Name)
	_, _ = fmt.Fprintf(os.Stdout, "Output: %s\n", scrapeOutputFile)
	return nil
}
