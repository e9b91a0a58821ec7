// Package scrape walks retailer storefronts and extracts raw product
// records. Site-specific knowledge lives in Site selector configs; the walk
// itself (category list, pagination, card extraction) is shared.
package scrape

import (
	"fmt"
	"strings"
)

// Site describes how to scrape one retailer storefront.
type Site struct {
	Name string

	// CategoriesURL is the page listing all product categories.
	CategoriesURL string
	// CategoryLinkSelector selects anchor elements pointing at category pages.
	CategoryLinkSelector string
	// DisallowedKeywords filters out category URLs containing any of these.
	DisallowedKeywords []string

	// CardSelector selects one product card on a listing page.
	CardSelector string
	// Per-card field selectors. Empty selectors yield empty fields.
	TitleSelector      string
	PriceSelector      string
	HappyPriceSelector string
	ImageSelector      string
	LinkSelector       string

	// PaginationSelector selects the page-number items of the pagination
	// control; the second-to-last item's text is the total page count.
	PaginationSelector string
	// PageParam is the query parameter for pagination (e.g. "page").
	PageParam string

	// LinkPrefix, when set, is required on extracted product links;
	// anything else is stored as an empty link.
	LinkPrefix string
}

// Builtin site configs for the supported retailers.
var sites = map[string]Site{
	"anhoch": {
		Name:                 "anhoch",
		CategoriesURL:        "https://www.anhoch.com/categories",
		CategoryLinkSelector: "div.all-categories h4.section-title > a",
		DisallowedKeywords:   []string{"vouchers"},
		CardSelector:         "div.product-card",
		TitleSelector:        ".product-name",
		PriceSelector:        ".product-price",
		ImageSelector:        "a.product-image img",
		LinkSelector:         "a.product-name",
		PaginationSelector:   "ul.pagination li.page-item",
		PageParam:            "page",
		LinkPrefix:           "https://www.anhoch.com",
	},
	"neptun": {
		Name:                 "neptun",
		CategoriesURL:        "https://www.neptun.mk/categories",
		CategoryLinkSelector: "ul.category-menu a",
		CardSelector:         "div.product-list-item",
		TitleSelector:        "h2.product-list-item__title a",
		PriceSelector:        ".product-price__amount--value",
		HappyPriceSelector:   ".product-price__amount--happy",
		ImageSelector:        ".product-list-item__image img",
		LinkSelector:         "h2.product-list-item__title a",
		PaginationSelector:   "ul.pagination li.page-item",
		PageParam:            "page",
		LinkPrefix:           "https://www.neptun.mk",
	},
	"tehnomarket": {
		Name:                 "tehnomarket",
		CategoriesURL:        "https://tehnomarket.com.mk/categories",
		CategoryLinkSelector: "nav.category-nav a",
		CardSelector:         "div.product-item",
		TitleSelector:        ".product-title",
		PriceSelector:        ".product-price",
		ImageSelector:        ".product-image img",
		LinkSelector:         "a.product-link",
		PaginationSelector:   "ul.pagination li",
		PageParam:            "page",
		LinkPrefix:           "https://tehnomarket.com.mk",
	},
}

// SiteByName returns the builtin config for a retailer.
func SiteByName(name string) (Site, error) {
	site, ok := sites[strings.ToLower(name)]
	if !ok {
		known := make([]string, 0, len(sites))
		for k := range sites {
			known = append(known, k)
		}
		return Site{}, fmt.Errorf("unknown site %q (known: %s)", name, strings.Join(known, ", "))
	}
	return site, nil
}
