package domain

import (
	"time"

	"github.com/google/uuid"
)

// InfluencerProfile is the owning record of a pipeline run. The registration
// sub-record tracks the run's progress and failures.
type InfluencerProfile struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	SocialProfiles map[string]string // network -> profile URL
	Registration   Registration
	CreatedAt      time.Time
}

// Registration tracks where an influencer is in the pipeline.
// Status advances strictly forward except on error.
type Registration struct {
	Status     string              `json:"status"`
	LastUpdate time.Time           `json:"lastUpdate"`
	Errors     []RegistrationError `json:"errors"` // Most recent first
}

// RegistrationError records a failed pipeline stage.
type RegistrationError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Registration statuses.
const (
	RegistrationFetchingPosts    = "fetching_posts"
	RegistrationExtractingClaims = "extracting_claims"
	RegistrationVerifyingClaims  = "verifying_claims"
	RegistrationDone             = "done"
	RegistrationFailed           = "error"
)

// RecordError prepends a registration error and marks the profile as failed.
func (r *Registration) RecordError(msg string, now time.Time) {
	r.Errors = append([]RegistrationError{{Timestamp: now, Message: msg}}, r.Errors...)
	r.Status = RegistrationFailed
	r.LastUpdate = now
}

// Advance moves the registration to the next status.
func (r *Registration) Advance(status string, now time.Time) {
	r.Status = status
	r.LastUpdate = now
}

// Supported social networks.
const (
	NetworkInstagram = "instagram"
	NetworkFacebook  = "facebook"
	NetworkTikTok    = "tiktok"
	NetworkTwitter   = "twitter"
	NetworkYouTube   = "youtube"
)

// Post is a raw social media post, immutable once fetched.
type Post struct {
	ID            uuid.UUID
	InfluencerID  uuid.UUID
	LocalID       string // Post ID on the social network
	SocialNetwork string
	URL           string
	Content       string
	PostedAt      time.Time
}
