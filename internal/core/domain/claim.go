package domain

import (
	"time"

	"github.com/google/uuid"
)

// Claim is the unit of verification: a normalized, deduplicated health
// statement with accumulated provenance and a verification score.
type Claim struct {
	ID                 uuid.UUID
	NormalizedClaim    string                 // Lowercase canonical text, the dedup key class
	Categories         []string               // Topic tags from the closed vocabulary
	Sources            map[string]ClaimSource // Keyed by influencer ID; grows, never shrinks
	VerificationStatus string
	Score              *float64 // In [-1, 1]; nil means no evidence or not yet verified
	ArticlesFound      int      // Evidence articles considered during last verification
	Embedding          []float32
	CreatedAt          time.Time
}

// ClaimSource links a claim back to the post where an influencer made it.
type ClaimSource struct {
	OriginalText string `json:"originalText"`
	PostURL      string `json:"postUrl"`
}

// Verification status constants.
const (
	StatusUnverified = "unverified"
	StatusVerified   = "verified"
)

// CandidateClaim is the transient output of extraction, consumed entirely
// by deduplication and claim storage.
type CandidateClaim struct {
	InfluencerID string
	ClaimText    string // Already lowercased
	OriginalText string
	PostURL      string
	Categories   []string
}

// MarkedCandidate is a candidate annotated with its dedup outcome.
// DuplicateOf is nil when no existing claim matched.
type MarkedCandidate struct {
	CandidateClaim
	DuplicateOf *uuid.UUID
}

// ClaimElements are the semantic pieces of a claim used to build
// literature search queries. Subject and Target include synonyms.
type ClaimElements struct {
	ClaimID string   `json:"claimId"`
	Subject []string `json:"subject"`
	Action  string   `json:"action"`
	Target  []string `json:"target"`
}

// StanceResult is one article's judged relationship to a claim.
type StanceResult struct {
	Direction    string `json:"direction"` // support, contradict, inconclusive, unrelated
	Strength     string `json:"strength"`  // mild, strong, n/a
	ArticleID    string `json:"articleId"`
	ArticleTitle string `json:"articleTitle"`
	ArticleURL   string `json:"articleUrl"`
}

// Stance directions and strengths.
const (
	StanceSupport      = "support"
	StanceContradict   = "contradict"
	StanceInconclusive = "inconclusive"
	StanceUnrelated    = "unrelated"

	StrengthMild   = "mild"
	StrengthStrong = "strong"
)

// Categories is the closed vocabulary for claim topic tags.
var Categories = []string{
	"nutrition",
	"fitness",
	"reproduction",
	"sickness treatment",
	"beauty",
	"health conditions",
	"preventive",
	"sleep and recovery",
	"child health",
	"gender and sexuality",
	"immunity and infection",
	"genetics",
	"mental health",
}
