// Package extract converts heterogeneous content sources (URLs, PDFs, Word
// documents, images) into plain text. URL extraction runs an ordered chain
// of strategies and falls back on any failure; file kinds dispatch to a
// single format reader.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Kind string

const (
	KindURL   Kind = "url"
	KindPDF   Kind = "pdf"
	KindDocx  Kind = "docx"
	KindImage Kind = "image"
)

// Source describes one content origin: a URL for KindURL, raw file bytes
// for the file kinds.
type Source struct {
	Kind Kind
	URL  string
	Data []byte
	Name string // original filename, used for titles
}

// Result is successfully extracted text plus which strategy produced it.
type Result struct {
	Title    string
	Text     string
	Strategy string
}

type FailureKind string

const (
	NetworkError            FailureKind = "network_error"
	UnsupportedFormat       FailureKind = "unsupported_format"
	MissingSystemDependency FailureKind = "missing_system_dependency"
	EmptyContent            FailureKind = "empty_content"
)

// Failure is a typed extraction error tagged with the strategy that
// produced it, so callers can show an actionable message.
type Failure struct {
	Kind     FailureKind
	Strategy string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Strategy, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Strategy, f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

func fail(strategy string, kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Strategy: strategy, Err: err}
}

// KindOf reports the failure kind of err, or "" if err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// Strategy is one method of turning a source into text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, src Source) (Result, error)
}

// Pipeline runs extraction. It is stateless across calls and safe for
// concurrent use.
type Pipeline struct {
	client        *http.Client
	urlStrategies []Strategy
	minContent    int
	ocrLang       string
	ocrTimeout    time.Duration
	browserWait   time.Duration
}

type Option func(*Pipeline)

func WithHTTPClient(c *http.Client) Option { return func(p *Pipeline) { p.client = c } }

// WithURLStrategies replaces the default URL chain. Order is priority order.
func WithURLStrategies(ss ...Strategy) Option { return func(p *Pipeline) { p.urlStrategies = ss } }

func WithMinContent(n int) Option           { return func(p *Pipeline) { p.minContent = n } }
func WithOCRLang(lang string) Option        { return func(p *Pipeline) { p.ocrLang = lang } }
func WithOCRTimeout(d time.Duration) Option { return func(p *Pipeline) { p.ocrTimeout = d } }

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		minContent:  50,
		ocrLang:     "eng",
		ocrTimeout:  20 * time.Second,
		browserWait: 2 * time.Second,
	}
	for _, o := range opts {
		o(p)
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 30 * time.Second}
	}
	if p.urlStrategies == nil {
		p.urlStrategies = []Strategy{
			&browserStrategy{wait: p.browserWait, minContent: p.minContent},
			&readabilityStrategy{client: p.client, minContent: p.minContent},
			&plainFetchStrategy{client: p.client, minContent: p.minContent},
		}
	}
	return p
}

// Extract produces plain text for src or a typed Failure. For URL sources
// the strategies run in priority order and the first success wins; only the
// exhaustion of the whole chain surfaces an error, tagged with the last
// strategy's failure kind.
func (p *Pipeline) Extract(ctx context.Context, src Source) (Result, error) {
	switch src.Kind {
	case KindURL:
		return p.extractURL(ctx, src)
	case KindPDF:
		return p.extractPDF(src)
	case KindDocx:
		return p.extractDocx(src)
	case KindImage:
		return p.extractImage(ctx, src)
	default:
		return Result{}, fail("pipeline", UnsupportedFormat, fmt.Errorf("unknown source kind %q", src.Kind))
	}
}

func (p *Pipeline) extractURL(ctx context.Context, src Source) (Result, error) {
	norm, err := NormalizeURL(src.URL)
	if err != nil {
		return Result{}, fail("pipeline", UnsupportedFormat, err)
	}
	src.URL = norm

	var last error
	for _, s := range p.urlStrategies {
		res, err := s.Extract(ctx, src)
		if err == nil {
			res.Strategy = s.Name()
			return res, nil
		}
		last = err
	}
	if last == nil {
		last = fail("pipeline", EmptyContent, errors.New("no url strategies configured"))
	}
	return Result{}, last
}

// NormalizeURL trims the input, defaults the scheme to https, and rejects
// strings that cannot name a reachable host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url cannot be empty")
	}
	if !strings.Contains(raw, ".") && !strings.HasPrefix(raw, "http") {
		return "", fmt.Errorf("%q does not look like a url", raw)
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Host == "" || len(strings.Split(u.Host, ".")) < 2 {
		return "", fmt.Errorf("invalid url %q: incomplete host", raw)
	}
	return u.String(), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
