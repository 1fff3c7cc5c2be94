package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"proposalapi/internal/config"
	"proposalapi/internal/model"
)

// Scraper fetches web pages and extracts their readable text content.
// Failures are reported per URL via the result status, never as an error:
// one bad URL must not abort a batch or a generation request.
type Scraper struct {
	client          *http.Client
	userAgent       string
	maxContentBytes int64
}

// New builds a Scraper from configuration.
func New(cfg config.ScrapeConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		userAgent:       cfg.UserAgent,
		maxContentBytes: cfg.MaxContentBytes,
	}
}

// Extract fetches the URL and returns its title and readable text.
// The returned status is "success" or "error"; on error the content is empty.
func (s *Scraper) Extract(ctx context.Context, rawURL string) model.URLContent {
	if err := validateURL(rawURL); err != nil {
		return model.URLContent{URL: rawURL, Status: model.StatusError}
	}

	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return model.URLContent{URL: rawURL, Status: model.StatusError}
	}

	page, err := parsePage(body)
	if err != nil {
		return model.URLContent{URL: rawURL, Status: model.StatusError}
	}

	return model.URLContent{
		URL:     rawURL,
		Title:   page.Title,
		Content: page.Content,
		Status:  model.StatusSuccess,
	}
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status)
	}
	if resp.ContentLength > s.maxContentBytes {
		return nil, fmt.Errorf("content too large: %d bytes", resp.ContentLength)
	}

	// Read one byte past the cap so oversized bodies are detectable.
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxContentBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxContentBytes {
		return nil, fmt.Errorf("content too large: over %d bytes", s.maxContentBytes)
	}
	return body, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
