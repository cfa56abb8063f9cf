package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	readability "github.com/go-shiori/go-readability"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// browserStrategy renders the page in a headless browser so
// JavaScript-built content is present before stripping tags.
type browserStrategy struct {
	wait       time.Duration
	minContent int
}

func (browserStrategy) Name() string { return "browser" }

var browserBinaries = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"}

func browserAvailable() bool {
	for _, b := range browserBinaries {
		if _, err := exec.LookPath(b); err == nil {
			return true
		}
	}
	return false
}

func (s *browserStrategy) Extract(ctx context.Context, src Source) (Result, error) {
	if !browserAvailable() {
		return Result{}, fail(s.Name(), MissingSystemDependency, errors.New("no chrome or chromium binary in PATH"))
	}

	actx, acancel := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(browserUserAgent),
	)...)
	defer acancel()
	bctx, bcancel := chromedp.NewContext(actx)
	defer bcancel()
	bctx, tcancel := context.WithTimeout(bctx, 30*time.Second)
	defer tcancel()

	var html, title string
	err := chromedp.Run(bctx,
		chromedp.Navigate(src.URL),
		chromedp.Sleep(s.wait),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return Result{}, fail(s.Name(), NetworkError, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fail(s.Name(), UnsupportedFormat, err)
	}
	text := mainText(doc)
	if len(text) < s.minContent {
		return Result{}, fail(s.Name(), EmptyContent, fmt.Errorf("rendered content too short (%d chars)", len(text)))
	}
	if title == "" {
		title = hostOf(src.URL)
	}
	return Result{Title: title, Text: text}, nil
}

// readabilityStrategy fetches the page and runs article extraction, which
// handles boilerplate much better than raw tag stripping.
type readabilityStrategy struct {
	client     *http.Client
	minContent int
}

func (readabilityStrategy) Name() string { return "readability" }

func (s *readabilityStrategy) Extract(ctx context.Context, src Source) (Result, error) {
	resp, err := fetchHTML(ctx, s.client, src.URL, s.Name())
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	u, _ := url.Parse(src.URL)
	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Result{}, fail(s.Name(), UnsupportedFormat, err)
	}
	text := collapseWhitespace(article.TextContent)
	if len(text) < s.minContent {
		return Result{}, fail(s.Name(), EmptyContent, fmt.Errorf("extracted content too short (%d chars)", len(text)))
	}
	title := article.Title
	if title == "" {
		title = hostOf(src.URL)
	}
	return Result{Title: title, Text: text}, nil
}

// plainFetchStrategy is the last resort: plain HTTP fetch with tag
// stripping and light main-content selection.
type plainFetchStrategy struct {
	client     *http.Client
	minContent int
}

func (plainFetchStrategy) Name() string { return "plain_fetch" }

func (s *plainFetchStrategy) Extract(ctx context.Context, src Source) (Result, error) {
	resp, err := fetchHTML(ctx, s.client, src.URL, s.Name())
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Result{}, fail(s.Name(), UnsupportedFormat, err)
	}
	text := mainText(doc)
	if len(text) < s.minContent {
		return Result{}, fail(s.Name(), EmptyContent, fmt.Errorf("extracted content too short (%d chars)", len(text)))
	}
	return Result{Title: pageTitle(doc, src.URL), Text: text}, nil
}

func fetchHTML(ctx context.Context, client *http.Client, rawURL, strategy string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fail(strategy, NetworkError, err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fail(strategy, NetworkError, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fail(strategy, NetworkError, fmt.Errorf("http status %d", resp.StatusCode))
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "text") {
		resp.Body.Close()
		return nil, fail(strategy, UnsupportedFormat, fmt.Errorf("content-type %q is not html", ct))
	}
	return resp, nil
}

var mainSelectors = []string{"main", "article", "[role=main]", ".content", "#content", "body"}

// mainText strips non-content elements and returns the text of the first
// main-content selector that matches.
func mainText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, noscript").Remove()
	for _, sel := range mainSelectors {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			return collapseWhitespace(node.Text())
		}
	}
	return collapseWhitespace(doc.Text())
}

func pageTitle(doc *goquery.Document, rawURL string) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return hostOf(rawURL)
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}
