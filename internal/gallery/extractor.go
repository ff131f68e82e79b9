// Package gallery scrapes the client-rendered skin gallery with a headless
// browser and extracts the six fixed slot positions per page.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// blockedResources keeps renders cheap: extraction reads DOM attributes,
// never pixels, so styling and media are dead weight.
var blockedResources = []string{
	"*.css", "*.woff", "*.woff2", "*.ttf", "*.otf",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.svg", "*.webp",
	"*.mp4", "*.webm", "*.ico",
}

var trendingPeriods = map[string]bool{
	"daily":   true,
	"weekly":  true,
	"monthly": true,
}

// Extractor renders gallery pages in an isolated headless Chrome session
// per call. Sessions are never pooled or reused; every exit path tears the
// browser down via the deferred cancels.
type Extractor struct {
	baseURL string
	timeout time.Duration
	log     *slog.Logger
}

func NewExtractor(baseURL string, timeout time.Duration, log *slog.Logger) *Extractor {
	return &Extractor{baseURL: baseURL, timeout: timeout, log: log}
}

// Latest returns the newest uploaded skins.
func (e *Extractor) Latest(ctx context.Context) []Entry {
	return e.extract(ctx, e.baseURL+"/minecraft-skins/new")
}

// Random returns a fresh random set per call.
func (e *Extractor) Random(ctx context.Context) []Entry {
	return e.extract(ctx, e.baseURL+"/minecraft-skins/random")
}

// Trending returns the trending page for the given period. An unknown
// period falls back to daily instead of failing.
func (e *Extractor) Trending(ctx context.Context, period string) []Entry {
	if !trendingPeriods[period] {
		period = "daily"
	}
	return e.extract(ctx, e.baseURL+"/minecraft-skins/trending/"+period)
}

// extract renders one page and parses its slots. Any navigation or render
// failure is logged and yields an empty result; the caller distinguishes
// failure from success only by the empty list.
func (e *Extractor) extract(ctx context.Context, url string) []Entry {
	html, err := e.render(ctx, url)
	if err != nil {
		e.log.Warn("gallery_render_failed", "url", url, "error", err)
		return nil
	}

	entries, err := ParseGallery(html)
	if err != nil {
		e.log.Warn("gallery_parse_failed", "url", url, "error", err)
		return nil
	}
	return entries
}

func (e *Extractor) render(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedResources),
		chromedp.Navigate(url),
		chromedp.WaitReady(`.col-4.col-md-2`, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}
