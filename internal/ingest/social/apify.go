package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
)

const (
	defaultBaseURL = "https://api.apify.com"
	// Actor runs are synchronous; scraping can take a while.
	defaultRunTimeout = 5 * time.Minute
)

var errApifyStatus = errors.New("apify status")

type apifyConnector struct {
	baseURL        string
	token          string
	profileActorID string
	postsActorID   string
	client         *http.Client
	logger         *zerolog.Logger
}

// Config holds configuration for the Apify connector.
type Config struct {
	BaseURL        string
	Token          string
	ProfileActorID string
	PostsActorID   string
	RunTimeout     time.Duration
}

// NewApify creates a connector that runs Apify actors synchronously and
// reads their default dataset items.
func NewApify(cfg Config, logger *zerolog.Logger) Connector {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}

	return &apifyConnector{
		baseURL:        cfg.BaseURL,
		token:          cfg.Token,
		profileActorID: cfg.ProfileActorID,
		postsActorID:   cfg.PostsActorID,
		client:         &http.Client{Timeout: cfg.RunTimeout},
		logger:         logger,
	}
}

func (c *apifyConnector) FetchProfiles(ctx context.Context, name string) ([]SocialProfile, error) {
	input := map[string]interface{}{
		"profileNames": []string{name},
		"socials": []string{
			domain.NetworkFacebook,
			domain.NetworkInstagram,
			domain.NetworkTikTok,
			domain.NetworkYouTube,
		},
	}

	var items []struct {
		Social           string `json:"social"`
		SocialProfileURL string `json:"socialProfileUrl"`
	}

	if err := c.runActor(ctx, c.profileActorID, input, &items); err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}

	profiles := make([]SocialProfile, 0, len(items))
	for _, item := range items {
		profiles = append(profiles, SocialProfile{
			Network:    item.Social,
			ProfileURL: item.SocialProfileURL,
		})
	}

	return profiles, nil
}

func (c *apifyConnector) FetchPosts(ctx context.Context, profileHandle, network string, limit int) ([]RawPost, error) {
	// Only Instagram scraping is wired in. Other networks must fail
	// loudly rather than silently no-op.
	if network != domain.NetworkInstagram {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedNetwork, network)
	}

	input := map[string]interface{}{
		"username":     []string{profileHandle},
		"resultsLimit": limit,
	}

	var items []struct {
		ID        string `json:"id"`
		Caption   string `json:"caption"`
		URL       string `json:"url"`
		Timestamp string `json:"timestamp"`
	}

	if err := c.runActor(ctx, c.postsActorID, input, &items); err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	posts := make([]RawPost, 0, len(items))

	for _, item := range items {
		postedAt := time.Time{}

		if item.Timestamp != "" {
			// Scraper payloads carry timestamps in assorted formats.
			parsed, err := dateparse.ParseAny(item.Timestamp)
			if err != nil {
				c.logger.Warn().Str("timestamp", item.Timestamp).Msg("unparsable post timestamp")
			} else {
				postedAt = parsed
			}
		}

		posts = append(posts, RawPost{
			LocalID:  item.ID,
			Content:  item.Caption,
			URL:      item.URL,
			PostedAt: postedAt,
		})
	}

	return posts, nil
}

// runActor starts an actor run synchronously and decodes the default
// dataset items into out.
func (c *apifyConnector) runActor(ctx context.Context, actorID string, input interface{}, out interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, actorID, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build actor request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("actor run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %d", errApifyStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode dataset items: %w", err)
	}

	return nil
}
