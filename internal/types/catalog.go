// Package types defines the shared data model for the catalog pipeline.
package types

// CatalogRecord is one product row as ingested from an annotated catalog
// file. Records are immutable once loaded; downstream stages derive from
// them rather than mutating them.
type CatalogRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	RawSpecs   string `json:"raw_specs,omitempty"`  // free text or JSON-serialized object
	Price      string `json:"price,omitempty"`
	HappyPrice string `json:"happy_price,omitempty"`
	Image      string `json:"image,omitempty"`
	Link       string `json:"link,omitempty"`
	Category   string `json:"category,omitempty"`   // LLM-assigned label
	ModelName  string `json:"model_name,omitempty"` // LLM-extracted model name
}

// NormalizedRecord is the canonical comparison form of a CatalogRecord,
// derived 1:1 by normalize.Normalize. Normalization is deterministic: the
// same raw record always yields the same normalized record.
type NormalizedRecord struct {
	CatalogRecord

	TitleClean string `json:"title_clean"`
	SpecsText  string `json:"specs_text"`  // flattened raw specs, original casing
	SpecsClean string `json:"specs_clean"` // cleaned flattened specs

	// Field-matcher forms: alphanumeric-only lowercase.
	NormModelName string `json:"norm_model_name"`
	NormCategory  string `json:"norm_category"`

	// SpecsMap holds the structured key/value view of RawSpecs when it
	// parses as a flat JSON object. Nil otherwise.
	SpecsMap map[string]string `json:"specs_map,omitempty"`
}

// Catalog is one retailer's full set of records for a matching run, in
// ingestion order. Order matters: the matchers traverse catalog A in this
// order, so earlier records get first claim on candidates.
type Catalog struct {
	Name    string
	Records []NormalizedRecord
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Titles returns the cleaned titles in catalog order.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.TitleClean
	}
	return out
}

// Specs returns the cleaned flattened specs in catalog order.
func (c *Catalog) Specs() []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.SpecsClean
	}
	return out
}
