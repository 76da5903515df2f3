// Package evidence retrieves biomedical literature used to verify claims.
// The only wired source is NCBI's eutils API (PubMed); search results are
// cached briefly to spare the upstream rate policy.
package evidence

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/platform/observability"
)

const (
	defaultBaseURL     = "https://eutils.ncbi.nlm.nih.gov"
	defaultHTTPTimeout = 30 * time.Second
	defaultCacheTTL    = time.Hour
	cacheCleanupPeriod = 10 * time.Minute

	// eutils allows 3 requests per second without an API key.
	eutilsRPS = 3
)

var errEvidenceStatus = errors.New("evidence api status")

// Retriever finds candidate article IDs for a query and resolves IDs into
// parsed article records.
type Retriever interface {
	Search(ctx context.Context, query, source string) ([]string, error)
	FetchByIDs(ctx context.Context, ids []string, source string) ([]domain.Article, error)
}

type pubmedClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	cache   *gocache.Cache
	logger  *zerolog.Logger
}

// Config holds configuration for the PubMed client.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration
	CacheTTL    time.Duration
}

// NewPubMed creates an evidence retriever backed by NCBI eutils.
func NewPubMed(cfg Config, logger *zerolog.Logger) Retriever {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}

	return &pubmedClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
		limiter: rate.NewLimiter(rate.Limit(eutilsRPS), 1),
		cache:   gocache.New(cfg.CacheTTL, cacheCleanupPeriod),
		logger:  logger,
	}
}

// Search returns article IDs matching the query. The query is expected to
// be pre-formatted eutils syntax (terms joined with +, [title]/[orgn]
// qualifiers allowed). An empty query returns no IDs.
func (c *pubmedClient) Search(ctx context.Context, query, source string) ([]string, error) {
	if query == "" {
		return nil, nil
	}

	if source != domain.SourceNCBI {
		return nil, fmt.Errorf("%w: unknown evidence source %q", apperrors.ErrInvalidInput, source)
	}

	if cached, ok := c.cache.Get(query); ok {
		return cached.([]string), nil
	}

	endpoint := fmt.Sprintf("%s/entrez/eutils/esearch.fcgi?db=pubmed&term=%s", c.baseURL, encodeTerm(query))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		observability.EvidenceSearches.WithLabelValues(source, "error").Inc()

		return nil, fmt.Errorf("%w: search: %v", apperrors.ErrEvidenceFetch, err)
	}

	ids, err := parseSearchResult(body)
	if err != nil {
		observability.EvidenceSearches.WithLabelValues(source, "error").Inc()

		return nil, fmt.Errorf("%w: parse search result: %v", apperrors.ErrEvidenceFetch, err)
	}

	observability.EvidenceSearches.WithLabelValues(source, "ok").Inc()
	c.cache.SetDefault(query, ids)

	return ids, nil
}

// FetchByIDs resolves article IDs into full article records. Articles that
// cannot be parsed are skipped rather than failing the batch.
func (c *pubmedClient) FetchByIDs(ctx context.Context, ids []string, source string) ([]domain.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	if source != domain.SourceNCBI {
		return nil, fmt.Errorf("%w: unknown evidence source %q", apperrors.ErrInvalidInput, source)
	}

	endpoint := fmt.Sprintf("%s/entrez/eutils/efetch.fcgi?db=pubmed&id=%s", c.baseURL, strings.Join(ids, ","))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch articles: %v", apperrors.ErrEvidenceFetch, err)
	}

	articles, skipped, err := parseArticleSet(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse articles: %v", apperrors.ErrEvidenceFetch, err)
	}

	if skipped > 0 {
		c.logger.Warn().Int("skipped", skipped).Msg("skipped unparsable evidence articles")
	}

	observability.EvidenceArticlesFetched.Add(float64(len(articles)))

	return articles, nil
}

func (c *pubmedClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("evidence rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evidence request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", errEvidenceStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return body, nil
}

// encodeTerm escapes each '+'-separated segment of an eutils term, keeping
// '+' itself as the separator. Queries carry LLM-derived synonyms, so any
// reserved character may show up inside a segment.
func encodeTerm(query string) string {
	segments := strings.Split(query, "+")
	for i, segment := range segments {
		segments[i] = url.QueryEscape(segment)
	}

	return strings.Join(segments, "+")
}

// ArticleURL builds the human-facing URL for a PubMed article ID.
func ArticleURL(id string) string {
	return "https://pubmed.ncbi.nlm.nih.gov/" + id
}

type eSearchResult struct {
	IDs []string `xml:"IdList>Id"`
}

func parseSearchResult(body []byte) ([]string, error) {
	var result eSearchResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal esearch response: %w", err)
	}

	return result.IDs, nil
}

// efetch XML shapes. AbstractText may be a single string or a list of
// labeled sections; Author may appear once or many times. Both cases map
// onto slices here.
type pubmedArticleSet struct {
	Articles []struct {
		Citation struct {
			PMID    string `xml:"PMID"`
			Article struct {
				Title    string `xml:"ArticleTitle"`
				Abstract struct {
					Sections []string `xml:"AbstractText"`
				} `xml:"Abstract"`
				Authors []struct {
					ForeName string `xml:"ForeName"`
					LastName string `xml:"LastName"`
				} `xml:"AuthorList>Author"`
			} `xml:"Article"`
		} `xml:"MedlineCitation"`
	} `xml:"PubmedArticle"`
}

func parseArticleSet(body []byte) ([]domain.Article, int, error) {
	var set pubmedArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, 0, fmt.Errorf("unmarshal efetch response: %w", err)
	}

	articles := make([]domain.Article, 0, len(set.Articles))
	skipped := 0

	for _, item := range set.Articles {
		citation := item.Citation

		// Articles without an abstract are likely invalid records.
		if len(citation.Article.Abstract.Sections) == 0 || citation.PMID == "" {
			skipped++
			continue
		}

		authors := make([]string, 0, len(citation.Article.Authors))
		for _, a := range citation.Article.Authors {
			name := strings.TrimSpace(a.ForeName + " " + a.LastName)
			if name != "" {
				authors = append(authors, name)
			}
		}

		articles = append(articles, domain.Article{
			ID:       citation.PMID,
			Title:    citation.Article.Title,
			Abstract: strings.Join(citation.Article.Abstract.Sections, " "),
			Authors:  authors,
			URL:      ArticleURL(citation.PMID),
			Source:   domain.SourceNCBI,
		})
	}

	return articles, skipped, nil
}
