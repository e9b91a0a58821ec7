// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/stefan/catalog-agent/internal/matching"
	"github.com/stefan/catalog-agent/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCatalogSummary outputs a human-readable summary of a loaded catalog.
func (p *Printer) PrintCatalogSummary(c *types.Catalog) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Store:    %s\n", c.Name))
	sb.WriteString(fmt.Sprintf("Records:  %d\n", c.Len()))

	withSpecs, withModel, withCategory := 0, 0, 0
	for _, r := range c.Records {
		if r.SpecsClean != "" {
			withSpecs++
		}
		if r.NormModelName != "" {
			withModel++
		}
		if r.NormCategory != "" {
			withCategory++
		}
	}
	sb.WriteString(fmt.Sprintf("Specs:    %d\n", withSpecs))
	sb.WriteString(fmt.Sprintf("Models:   %d\n", withModel))
	sb.WriteString(fmt.Sprintf("Category: %d", withCategory))

	p.printBox("LOADED CATALOG", sb.String())
}

// PrintMatchSummary outputs match counts per method tag, the score range,
// and a peek at the top-scoring pairs.
func (p *Printer) PrintMatchSummary(matches []matching.Match, a, b *types.Catalog) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Matched %d of %d x %d records\n\n", len(matches), a.Len(), b.Len()))

	if len(matches) == 0 {
		p.printBox("MATCH RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	byType := make(map[matching.MatchType]int)
	minScore, maxScore := matches[0].Score, matches[0].Score
	for _, m := range matches {
		byType[m.Type]++
		if m.Score < minScore {
			minScore = m.Score
		}
		if m.Score > maxScore {
			maxScore = m.Score
		}
	}

	typeNames := make([]string, 0, len(byType))
	for t := range byType {
		typeNames = append(typeNames, string(t))
	}
	sort.Strings(typeNames)
	for _, t := range typeNames {
		sb.WriteString(fmt.Sprintf("  %-26s %d\n", t, byType[matching.MatchType(t)]))
	}
	sb.WriteString(fmt.Sprintf("\nScores:  %.4f - %.4f\n\n", minScore, maxScore))

	top := make([]matching.Match, len(matches))
	copy(top, matches)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })

	count := min(len(top), maxItemsToShow)
	for i := 0; i < count; i++ {
		title := top[i].A.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %.4f  %s\n", i+1, top[i].Score, title))
	}
	if len(top) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more pairs\n", len(top)-maxItemsToShow))
	}

	p.printBox("MATCH RUN SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnnotationSummary outputs how many records an annotation pass
// touched.
func (p *Printer) PrintAnnotationSummary(stage string, annotated, total int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Stage:     %s\n", stage))
	sb.WriteString(fmt.Sprintf("Annotated: %d\n", annotated))
	sb.WriteString(fmt.Sprintf("Total:     %d", total))
	p.printBox("ANNOTATION SUMMARY", sb.String())
}
