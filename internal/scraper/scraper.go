package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"go.uber.org/zap"
)

// wikiArticleURL matches Wikipedia article URLs like
// https://en.wikipedia.org/wiki/Alan_Turing. Special pages, bare hosts and
// non-wikipedia hosts are rejected.
var wikiArticleURL = regexp.MustCompile(`^https?://[a-z][a-z0-9-]*(\.m)?\.wikipedia\.org/wiki/[^\s]+$`)

// ValidateWikipediaURL reports whether raw looks like a Wikipedia article URL.
func ValidateWikipediaURL(raw string) bool {
	if !wikiArticleURL.MatchString(raw) {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	title := strings.TrimPrefix(parsed.Path, "/wiki/")
	return title != "" && !strings.Contains(title, ":")
}

// WikipediaFetcher fetches plain article text through the MediaWiki
// extracts API instead of parsing article HTML.
type WikipediaFetcher struct {
	httpClient *http.Client
}

// NewWikipediaFetcher creates a fetcher with its own request timeout.
func NewWikipediaFetcher(timeout time.Duration) *WikipediaFetcher {
	return &WikipediaFetcher{
		httpClient: &http.Client{Timeout: timeout},
	}
}

type extractsResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string    `json:"title"`
			Extract string    `json:"extract"`
			Missing *struct{} `json:"missing,omitempty"`
		} `json:"pages"`
	} `json:"query"`
}

// Scrape implements domain.ArticleFetcher.
func (f *WikipediaFetcher) Scrape(ctx context.Context, articleURL string) (string, string, error) {
	parsed, err := url.Parse(articleURL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse article URL: %w", err)
	}

	slug := strings.TrimPrefix(parsed.Path, "/wiki/")
	pageTitle, err := url.PathUnescape(slug)
	if err != nil {
		pageTitle = slug
	}
	pageTitle = strings.ReplaceAll(pageTitle, "_", " ")

	apiURL := fmt.Sprintf("https://%s/w/api.php", parsed.Host)
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("titles", pageTitle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build extracts request: %w", err)
	}
	req.Header.Set("User-Agent", "wikiquiz/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("extracts API returned status %d", resp.StatusCode)
	}

	var extracts extractsResponse
	if err := json.NewDecoder(resp.Body).Decode(&extracts); err != nil {
		return "", "", fmt.Errorf("failed to decode extracts response: %w", err)
	}

	for _, page := range extracts.Query.Pages {
		if page.Missing != nil || page.Extract == "" {
			continue
		}
		logger.Get().Info("Scraped Wikipedia article",
			zap.String("title", page.Title),
			zap.Int("chars", len(page.Extract)))
		return page.Extract, page.Title, nil
	}

	return "", "", fmt.Errorf("no article text found for %q", pageTitle)
}

var _ domain.ArticleFetcher = (*WikipediaFetcher)(nil)
