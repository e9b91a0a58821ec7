package catalog

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/stefan/catalog-agent/internal/types"
)

// recordHeader is the full column set of a catalog file. Stages that have
// not run yet leave their columns empty; Load tolerates the extra columns.
var recordHeader = []string{
	ColTitle, ColPrice, ColHappyPrice, ColImageSrc, ColLink,
	ColCategory, ColModelName, ColSpecs,
}

// WriteRecordsCSV writes catalog records in ingestion order. Used by the
// scrape and annotation stages to persist their output for the next stage.
func WriteRecordsCSV(path string, records []types.CatalogRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating catalog file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(recordHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Title, r.Price, r.HappyPrice, r.Image, r.Link,
			r.Category, r.ModelName, r.RawSpecs,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing record row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing catalog file: %w", err)
	}
	return nil
}
