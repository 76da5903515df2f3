// Package social fetches influencer profiles and posts from social
// networks. The wired implementation drives Apify scraping actors over
// their HTTP API.
package social

import (
	"context"
	"strings"
	"time"
)

// SocialProfile is one network profile discovered for an influencer.
type SocialProfile struct {
	Network    string
	ProfileURL string
}

// RawPost is a post as returned by the scraper, before persistence.
type RawPost struct {
	LocalID  string
	Content  string
	URL      string
	PostedAt time.Time
}

// Connector is the social-media scraping capability.
type Connector interface {
	// FetchProfiles discovers an influencer's social profiles by name.
	FetchProfiles(ctx context.Context, name string) ([]SocialProfile, error)

	// FetchPosts fetches recent posts for a profile handle on the given
	// network. Unsupported networks fail with ErrUnsupportedNetwork.
	FetchPosts(ctx context.Context, profileHandle, network string, limit int) ([]RawPost, error)
}

// ProfileHandle extracts the profile handle from a social profile URL.
func ProfileHandle(profileURL string) string {
	parts := strings.Split(strings.TrimRight(profileURL, "/"), "/")

	return strings.TrimPrefix(parts[len(parts)-1], "@")
}
