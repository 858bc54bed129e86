// Package imageresolver turns share-page links from short-link image hosts
// into direct image URLs. Resolution is best effort: every failure leaves the
// original URL in place and is reported through Result rather than an error
// return.
package imageresolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

var ErrUpstreamFetch = errors.New("upstream fetch failed")

type Outcome int

const (
	Unchanged Outcome = iota
	Resolved
)

func (o Outcome) String() string {
	if o == Resolved {
		return "resolved"
	}
	return "unchanged"
}

type Result struct {
	URL     string
	Outcome Outcome
	// Err is set when a fetch was attempted and failed. URL is then the input.
	Err error
}

type Config struct {
	ShortHosts []string
	DirectHost string
	Timeout    time.Duration
	// MaxBodyBytes caps how much of a share page is read.
	MaxBodyBytes int
}

func DefaultConfig() Config {
	return Config{
		ShortHosts:   []string{"ibb.co", "www.ibb.co"},
		DirectHost:   "i.ibb.co",
		Timeout:      10 * time.Second,
		MaxBodyBytes: 2 << 20,
	}
}

type Resolver struct {
	client     *resty.Client
	shortHosts map[string]struct{}
	directHost string
}

func New(cfg Config) *Resolver {
	return NewWithClient(resty.New(), cfg)
}

func NewWithClient(client *resty.Client, cfg Config) *Resolver {
	def := DefaultConfig()
	if len(cfg.ShortHosts) == 0 {
		cfg.ShortHosts = def.ShortHosts
	}
	if cfg.DirectHost == "" {
		cfg.DirectHost = def.DirectHost
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	client.SetResponseBodyLimit(cfg.MaxBodyBytes)
	client.SetHeader("Accept", "text/html")

	hosts := make(map[string]struct{}, len(cfg.ShortHosts))
	for _, h := range cfg.ShortHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	return &Resolver{
		client:     client,
		shortHosts: hosts,
		directHost: strings.ToLower(cfg.DirectHost),
	}
}

// Applies reports whether raw points at a share page that needs resolving.
func (r *Resolver) Applies(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == r.directHost {
		return false
	}
	_, ok := r.shortHosts[host]
	return ok
}

func (r *Resolver) Resolve(ctx context.Context, raw string) Result {
	if !r.Applies(raw) {
		return Result{URL: raw, Outcome: Unchanged}
	}

	resp, err := r.client.R().SetContext(ctx).Get(strings.TrimSpace(raw))
	if err != nil {
		return Result{URL: raw, Outcome: Unchanged, Err: fmt.Errorf("%w: %v", ErrUpstreamFetch, err)}
	}
	if !resp.IsSuccess() {
		return Result{URL: raw, Outcome: Unchanged, Err: fmt.Errorf("%w: status %d", ErrUpstreamFetch, resp.StatusCode())}
	}

	direct, err := r.extract(resp.Body())
	if err != nil {
		return Result{URL: raw, Outcome: Unchanged, Err: fmt.Errorf("%w: %v", ErrUpstreamFetch, err)}
	}
	if direct == "" {
		return Result{URL: raw, Outcome: Unchanged}
	}
	return Result{URL: direct, Outcome: Resolved}
}

// extract returns the first og:image on the direct content host, or "".
func (r *Resolver) extract(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", err
	}

	prefix := "https://" + r.directHost + "/"
	var found string
	doc.Find(`meta[property="og:image"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, ok := s.Attr("content")
		if ok && strings.HasPrefix(content, prefix) {
			found = content
			return false
		}
		return true
	})
	return found, nil
}
