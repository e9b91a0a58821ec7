// Package catalog loads annotated product catalogs from tabular files and
// writes matched-pair reports. Column names are a contract with the upstream
// annotation stages; a missing required column aborts the run before any
// matching starts.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/stefan/catalog-agent/internal/normalize"
	"github.com/stefan/catalog-agent/internal/types"
)

// Column names expected in annotated catalog files.
const (
	ColTitle      = "Title"
	ColSpecs      = "extracted_specs"
	ColPrice      = "Price"
	ColHappyPrice = "HappyPrice"
	ColImage      = "Image"
	ColImageSrc   = "Image Src"
	ColLink       = "Link"
	ColModelName  = "Model Name"
	ColCategory   = "Category"
)

// MissingColumnError reports a required column absent from an input file.
type MissingColumnError struct {
	Path   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("input file %s is missing required column %q", e.Path, e.Column)
}

// LoadOptions controls which columns are mandatory.
type LoadOptions struct {
	// RequireFields additionally mandates the Model Name and Category
	// columns, which only the two-phase field matcher consumes.
	RequireFields bool
}

// Load reads one retailer's annotated catalog from a CSV file and returns
// it fully normalized. Row order is preserved; record IDs are synthesized
// as "<name>-<row>". A row whose spec payload is not valid JSON is kept
// with the payload treated as opaque text, never dropped.
func Load(path, name string, opts LoadOptions) (*types.Catalog, error) {
	records, err := LoadRecords(path, name, opts)
	if err != nil {
		return nil, err
	}
	return normalize.NormalizeAll(name, records), nil
}

// LoadRecords reads the raw records without normalizing. The annotation
// stages use this form because they rewrite columns in place.
func LoadRecords(path, name string, opts LoadOptions) ([]types.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	required := []string{ColTitle, ColSpecs}
	if opts.RequireFields {
		required = append(required, ColModelName, ColCategory)
	}
	for _, col := range required {
		if _, ok := cols[col]; !ok {
			return nil, &MissingColumnError{Path: path, Column: col}
		}
	}

	field := func(row []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []types.CatalogRecord
	for rowNum := 0; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d of %s: %w", rowNum+2, path, err)
		}

		image := field(row, ColImage)
		if image == "" {
			image = field(row, ColImageSrc)
		}
		records = append(records, types.CatalogRecord{
			ID:         fmt.Sprintf("%s-%d", name, rowNum),
			Title:      field(row, ColTitle),
			RawSpecs:   field(row, ColSpecs),
			Price:      field(row, ColPrice),
			HappyPrice: field(row, ColHappyPrice),
			Image:      image,
			Link:       field(row, ColLink),
			Category:   field(row, ColCategory),
			ModelName:  field(row, ColModelName),
		})
	}

	return records, nil
}
