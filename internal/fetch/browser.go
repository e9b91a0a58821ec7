// Package fetch - browser.go provides headless browser rendering for
// storefronts that only populate product listings from JavaScript.
package fetch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// renderSettle is how long to let client-side rendering run after the page
// body is ready before reading the DOM.
const renderSettle = 2 * time.Second

// Browser drives one headless Chrome instance across many page renders.
// Storefront category walks render hundreds of pages, so the allocator is
// kept alive for the Browser's lifetime rather than spawned per page.
// Requires Chrome/Chromium on the system.
type Browser struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	verbose  bool
}

// NewBrowser starts a headless browser allocator bound to ctx.
func NewBrowser(ctx context.Context, verbose bool) *Browser {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	return &Browser{allocCtx: allocCtx, cancel: cancel, verbose: verbose}
}

// Close shuts the browser allocator down.
func (b *Browser) Close() {
	b.cancel()
}

// Render navigates to url, waits for waitSelector to appear (plus a settle
// period for late-rendering scripts) and returns the rendered HTML.
func (b *Browser) Render(ctx context.Context, url, waitSelector string, timeout time.Duration) (string, error) {
	if b.verbose {
		log.Printf("[BROWSER] rendering: %s", url)
	}

	browserCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}
	actions = append(actions, chromedp.Sleep(renderSettle))

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		return "", fmt.Errorf("browser rendering failed for %s: %w", url, err)
	}

	if b.verbose {
		log.Printf("[BROWSER] rendered HTML: %d bytes", len(html))
	}

	return html, nil
}
