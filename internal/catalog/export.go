package catalog

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/stefan/catalog-agent/internal/matching"
)

// matchHeader is the merged-row column set for matched-pair output. Both
// records' identifying fields appear side by side, followed by the scores
// and the method tag.
var matchHeader = []string{
	"Title_Store1", "Title_Store2",
	"Price_Store1", "Price_Store2",
	"HappyPrice_Store1", "HappyPrice_Store2",
	"Link_Store1", "Link_Store2",
	"Specs_JSON_Store1", "Specs_JSON_Store2",
	"Image_Store1", "Image_Store2",
	"Title_Similarity_Score", "Specs_Similarity_Score",
	"Combined_Score", "Match_Type",
}

func matchRow(m matching.Match) []string {
	return []string{
		m.A.Title, m.B.Title,
		m.A.Price, m.B.Price,
		m.A.HappyPrice, m.B.HappyPrice,
		m.A.Link, m.B.Link,
		m.A.RawSpecs, m.B.RawSpecs,
		m.A.Image, m.B.Image,
		formatScore(m.TitleScore), formatScore(m.SpecScore),
		formatScore(m.Score), string(m.Type),
	}
}

func formatScore(s float64) string {
	return strconv.FormatFloat(round4(s), 'f', -1, 64)
}

// round4 rounds half away from zero so negative scores round the same
// way positive ones do.
func round4(s float64) float64 {
	return math.Round(s*10000) / 10000
}

// WriteMatchesCSV writes committed matches as one merged row per pair.
func WriteMatchesCSV(path string, matches []matching.Match) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(matchHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, m := range matches {
		if err := w.Write(matchRow(m)); err != nil {
			return fmt.Errorf("writing match row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}

// WriteMatchesXLSX writes the same merged rows as an XLSX workbook for
// manual review in a spreadsheet.
func WriteMatchesXLSX(path string, matches []matching.Match) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Matches"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	for i, h := range matchHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("writing header cell: %w", err)
		}
	}

	for rowIdx, m := range matches {
		for colIdx, v := range matchRow(m) {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing match cell: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
