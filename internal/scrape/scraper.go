package scrape

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/stefan/catalog-agent/internal/fetch"
	"github.com/stefan/catalog-agent/internal/types"
)

// DefaultConcurrency bounds how many category walks run at once. Each walk
// holds a browser tab, so this is deliberately small.
const DefaultConcurrency = 3

// DefaultPageTimeout bounds a single page render.
const DefaultPageTimeout = 20 * time.Second

// Renderer produces rendered HTML for a URL. fetch.Browser is the real
// implementation; tests substitute canned HTML.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error)
}

// Scraper walks one retailer storefront.
type Scraper struct {
	Site        Site
	Renderer    Renderer
	FetchOpts   *fetch.Options
	Concurrency int
	PageTimeout time.Duration
	Verbose     bool
}

// NewScraper returns a Scraper with default limits.
func NewScraper(site Site, renderer Renderer) *Scraper {
	return &Scraper{
		Site:        site,
		Renderer:    renderer,
		Concurrency: DefaultConcurrency,
		PageTimeout: DefaultPageTimeout,
	}
}

// CategoryURLs fetches the storefront's category index over plain HTTP and
// extracts the category page URLs.
func (s *Scraper) CategoryURLs(ctx context.Context) ([]string, error) {
	result, err := fetch.URL(ctx, s.Site.CategoriesURL, s.FetchOpts)
	if err != nil {
		return nil, fmt.Errorf("fetching category index: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return nil, fmt.Errorf("parsing category index: %w", err)
	}

	var urls []string
	doc.Find(s.Site.CategoryLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		for _, keyword := range s.Site.DisallowedKeywords {
			if strings.Contains(href, keyword) {
				return
			}
		}
		urls = append(urls, href)
	})

	if s.Verbose {
		log.Printf("[SCRAPE] %s: %d categories found", s.Site.Name, len(urls))
	}
	return urls, nil
}

// Run walks every category with bounded concurrency and returns the raw
// records. Output preserves category-index order, then page order within a
// category, so repeat runs over unchanged storefronts are comparable.
func (s *Scraper) Run(ctx context.Context) ([]types.CatalogRecord, error) {
	categories, err := s.CategoryURLs(ctx)
	if err != nil {
		return nil, err
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	perCategory := make([][]types.CatalogRecord, len(categories))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, categoryURL := range categories {
		g.Go(func() error {
			records, err := s.scrapeCategory(gCtx, categoryURL)
			if err != nil {
				return fmt.Errorf("category %s: %w", categoryURL, err)
			}
			perCategory[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []types.CatalogRecord
	for _, records := range perCategory {
		all = append(all, records...)
	}
	if s.Verbose {
		log.Printf("[SCRAPE] %s: %d products total", s.Site.Name, len(all))
	}
	return all, nil
}

// scrapeCategory renders each listing page of one category and extracts
// product cards. A page that times out or renders without cards is skipped,
// not fatal; an empty category means that retailer section has nothing to
// match against, which downstream stages handle.
func (s *Scraper) scrapeCategory(ctx context.Context, categoryURL string) ([]types.CatalogRecord, error) {
	timeout := s.PageTimeout
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}

	html, err := s.Renderer.Render(ctx, categoryURL, s.Site.CardSelector, timeout)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if s.Verbose {
			log.Printf("[SCRAPE] no products or timeout in %s: %v", categoryURL, err)
		}
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing first page: %w", err)
	}
	total := totalPages(doc, s.Site.PaginationSelector)
	if s.Verbose {
		log.Printf("[SCRAPE] %s: %d pages", categoryURL, total)
	}

	var records []types.CatalogRecord
	for page := 1; page <= total; page++ {
		pageURL := fmt.Sprintf("%s?%s=%d", categoryURL, s.Site.PageParam, page)
		pageHTML, err := s.Renderer.Render(ctx, pageURL, s.Site.CardSelector, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if s.Verbose {
				log.Printf("[SCRAPE] skipping page %d of %s: %v", page, categoryURL, err)
			}
			continue
		}
		pageRecords, err := ExtractProducts(pageHTML, s.Site)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		records = append(records, pageRecords...)
	}
	return records, nil
}

// ExtractProducts pulls product cards out of one rendered listing page.
// Missing fields on a card come back empty rather than failing the page.
func ExtractProducts(html string, site Site) ([]types.CatalogRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing listing page: %w", err)
	}

	var records []types.CatalogRecord
	doc.Find(site.CardSelector).Each(func(_ int, card *goquery.Selection) {
		rec := types.CatalogRecord{
			Title:      text(card, site.TitleSelector),
			Price:      text(card, site.PriceSelector),
			HappyPrice: text(card, site.HappyPriceSelector),
		}
		if site.ImageSelector != "" {
			rec.Image, _ = card.Find(site.ImageSelector).First().Attr("src")
		}
		if site.LinkSelector != "" {
			link, _ := card.Find(site.LinkSelector).First().Attr("href")
			if site.LinkPrefix == "" || strings.HasPrefix(link, site.LinkPrefix) {
				rec.Link = link
			}
		}
		records = append(records, rec)
	})
	return records, nil
}

func text(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(sel.Find(selector).First().Text())
}

// totalPages reads the total page count from the pagination control:
// the second-to-last page item holds the last page number. Pages without a
// usable control count as a single page.
func totalPages(doc *goquery.Document, selector string) int {
	if selector == "" {
		return 1
	}
	items := doc.Find(selector)
	if items.Length() < 2 {
		return 1
	}
	label := strings.TrimSpace(items.Eq(items.Length() - 2).Text())
	if n, err := strconv.Atoi(label); err == nil && n >= 1 {
		return n
	}
	return 1
}
