// Package pipeline chains the claim verification stages for one
// influencer: fetch posts, extract claims, deduplicate, persist, verify.
// Stage progress and failures are tracked on the influencer's
// registration record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/ingest/social"
	"github.com/verihealth/claimtrust/internal/platform/observability"
	"github.com/verihealth/claimtrust/internal/process/claims"
	"github.com/verihealth/claimtrust/internal/process/dedup"
	"github.com/verihealth/claimtrust/internal/process/extract"
	"github.com/verihealth/claimtrust/internal/process/verify"
)

// ErrRunActive is returned when a pipeline run is already in flight for
// the influencer. Only one run per influencer executes at a time.
var ErrRunActive = errors.New("pipeline run already active")

// Repository is the persistence surface the orchestrator itself needs.
// The stage components carry their own narrower interfaces.
type Repository interface {
	InsertInfluencer(ctx context.Context, profile *domain.InfluencerProfile) error
	GetInfluencer(ctx context.Context, id uuid.UUID) (*domain.InfluencerProfile, error)
	GetInfluencerBySlug(ctx context.Context, slug string) (*domain.InfluencerProfile, error)
	ListInfluencers(ctx context.Context, nameFilter string) ([]domain.InfluencerProfile, error)
	UpdateRegistration(ctx context.Context, id uuid.UUID, registration domain.Registration) error
	DeleteInfluencer(ctx context.Context, id uuid.UUID) error
	InsertPosts(ctx context.Context, posts []domain.Post) error
	ListPostsForInfluencer(ctx context.Context, influencerID uuid.UUID) ([]domain.Post, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
}

// Orchestrator drives pipeline runs.
type Orchestrator struct {
	repo        Repository
	connector   social.Connector
	extractor   *extract.Extractor
	partitioner *dedup.Partitioner
	claims      *claims.Manager
	verifier    *verify.Verifier
	postsLimit  int
	logger      *zerolog.Logger

	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

func New(
	repo Repository,
	connector social.Connector,
	extractor *extract.Extractor,
	partitioner *dedup.Partitioner,
	manager *claims.Manager,
	verifier *verify.Verifier,
	postsLimit int,
	logger *zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		repo:        repo,
		connector:   connector,
		extractor:   extractor,
		partitioner: partitioner,
		claims:      manager,
		verifier:    verifier,
		postsLimit:  postsLimit,
		logger:      logger,
		active:      map[uuid.UUID]struct{}{},
	}
}

// Register creates an influencer profile: discovers their social
// profiles by name and stores the record in the initial pipeline state.
// Registration does not start a run; callers trigger Run separately.
func (o *Orchestrator) Register(ctx context.Context, name string) (*domain.InfluencerProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty influencer name", apperrors.ErrInvalidInput)
	}

	slug := Slugify(name)

	_, err := o.repo.GetInfluencerBySlug(ctx, slug)
	if err == nil {
		return nil, fmt.Errorf("%w: influencer %q already registered", apperrors.ErrInvalidInput, slug)
	}

	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check influencer slug: %w", err)
	}

	found, err := o.connector.FetchProfiles(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("fetch social profiles: %w", err)
	}

	profiles := make(map[string]string, len(found))
	for _, p := range found {
		profiles[p.Network] = p.ProfileURL
	}

	profile := &domain.InfluencerProfile{
		Name:           name,
		Slug:           slug,
		SocialProfiles: profiles,
		Registration: domain.Registration{
			Status:     domain.RegistrationFetchingPosts,
			LastUpdate: time.Now().UTC(),
		},
	}

	if err := o.repo.InsertInfluencer(ctx, profile); err != nil {
		return nil, err
	}

	o.logger.Info().
		Str("influencer_id", profile.ID.String()).
		Str("slug", slug).
		Int("profiles", len(profiles)).
		Msg("influencer registered")

	return profile, nil
}

// Run executes the full pipeline for one influencer. Stages run
// sequentially; the first failure records a registration error, flips
// the status to error, and aborts the run.
func (o *Orchestrator) Run(ctx context.Context, influencerID uuid.UUID) error {
	if !o.acquire(influencerID) {
		return fmt.Errorf("%w: influencer %s", ErrRunActive, influencerID)
	}
	defer o.release(influencerID)

	profile, err := o.repo.GetInfluencer(ctx, influencerID)
	if err != nil {
		return fmt.Errorf("load influencer: %w", err)
	}

	if err := o.runStages(ctx, profile); err != nil {
		observability.PipelineRuns.WithLabelValues("error").Inc()
		o.recordFailure(ctx, profile, err)

		return err
	}

	observability.PipelineRuns.WithLabelValues("ok").Inc()

	return nil
}

func (o *Orchestrator) runStages(ctx context.Context, profile *domain.InfluencerProfile) error {
	if err := o.advance(ctx, profile, domain.RegistrationFetchingPosts); err != nil {
		return err
	}

	if err := o.fetchPosts(ctx, profile); err != nil {
		return err
	}

	if err := o.advance(ctx, profile, domain.RegistrationExtractingClaims); err != nil {
		return err
	}

	if err := o.extractClaims(ctx, profile); err != nil {
		return err
	}

	if err := o.advance(ctx, profile, domain.RegistrationVerifyingClaims); err != nil {
		return err
	}

	if err := o.verifier.VerifyAll(ctx); err != nil {
		return err
	}

	return o.advance(ctx, profile, domain.RegistrationDone)
}

// fetchPosts pulls recent posts from every discovered profile and stores
// them. Networks without a wired scraper are skipped, not fatal.
func (o *Orchestrator) fetchPosts(ctx context.Context, profile *domain.InfluencerProfile) error {
	for network, profileURL := range profile.SocialProfiles {
		raw, err := o.connector.FetchPosts(ctx, social.ProfileHandle(profileURL), network, o.postsLimit)
		if err != nil {
			if errors.Is(err, apperrors.ErrUnsupportedNetwork) {
				o.logger.Debug().Str("network", network).Msg("skipping unsupported network")
				continue
			}

			return fmt.Errorf("fetch posts from %s: %w", network, err)
		}

		posts := make([]domain.Post, 0, len(raw))
		for _, p := range raw {
			posts = append(posts, domain.Post{
				InfluencerID:  profile.ID,
				LocalID:       p.LocalID,
				SocialNetwork: network,
				URL:           p.URL,
				Content:       p.Content,
				PostedAt:      p.PostedAt,
			})
		}

		if err := o.repo.InsertPosts(ctx, posts); err != nil {
			return err
		}

		observability.PostsFetched.WithLabelValues(network).Add(float64(len(posts)))
	}

	return nil
}

func (o *Orchestrator) extractClaims(ctx context.Context, profile *domain.InfluencerProfile) error {
	posts, err := o.repo.ListPostsForInfluencer(ctx, profile.ID)
	if err != nil {
		return err
	}

	candidates, err := o.extractor.Extract(ctx, posts)
	if err != nil {
		return err
	}

	existing, err := o.repo.ListClaims(ctx)
	if err != nil {
		return err
	}

	marked, err := o.partitioner.Partition(ctx, candidates, existing)
	if err != nil {
		return err
	}

	_, err = o.claims.AddNew(ctx, marked)

	return err
}

// AddCustomClaim runs a single operator-supplied claim through dedup and
// persistence, attributed to the influencer. The claim joins the
// unverified backlog; it is not verified inline. Returns the resolved
// claim, which is the existing one when the text deduplicates.
func (o *Orchestrator) AddCustomClaim(ctx context.Context, influencerID uuid.UUID, text string, categories []string) (*domain.Claim, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil, fmt.Errorf("%w: empty claim text", apperrors.ErrInvalidInput)
	}

	parsed, err := claims.ParseCategories(categories)
	if err != nil {
		return nil, err
	}

	if _, err := o.repo.GetInfluencer(ctx, influencerID); err != nil {
		return nil, fmt.Errorf("load influencer: %w", err)
	}

	existing, err := o.repo.ListClaims(ctx)
	if err != nil {
		return nil, err
	}

	candidate := domain.CandidateClaim{
		InfluencerID: influencerID.String(),
		ClaimText:    normalized,
		OriginalText: strings.TrimSpace(text),
		Categories:   parsed,
	}

	marked, err := o.partitioner.Partition(ctx, []domain.CandidateClaim{candidate}, existing)
	if err != nil {
		return nil, err
	}

	inserted, err := o.claims.AddNew(ctx, marked)
	if err != nil {
		return nil, err
	}

	if len(inserted) > 0 {
		return &inserted[0], nil
	}

	return o.claims.Get(ctx, *marked[0].DuplicateOf)
}

// VerifyAll verifies the whole unverified backlog, independent of any
// influencer run. The background worker calls this on its poll interval.
func (o *Orchestrator) VerifyAll(ctx context.Context) error {
	return o.verifier.VerifyAll(ctx)
}

// Influencers lists registered influencers, optionally filtered by name.
func (o *Orchestrator) Influencers(ctx context.Context, nameFilter string) ([]domain.InfluencerProfile, error) {
	return o.repo.ListInfluencers(ctx, nameFilter)
}

// RemoveInfluencer deletes an influencer and their posts. Their claims
// stay in the store; accumulated provenance is not unwound.
func (o *Orchestrator) RemoveInfluencer(ctx context.Context, id uuid.UUID) error {
	if !o.acquire(id) {
		return fmt.Errorf("%w: influencer %s", ErrRunActive, id)
	}
	defer o.release(id)

	return o.repo.DeleteInfluencer(ctx, id)
}

func (o *Orchestrator) advance(ctx context.Context, profile *domain.InfluencerProfile, status string) error {
	profile.Registration.Advance(status, time.Now().UTC())

	if err := o.repo.UpdateRegistration(ctx, profile.ID, profile.Registration); err != nil {
		return err
	}

	o.logger.Info().
		Str("influencer_id", profile.ID.String()).
		Str("status", status).
		Msg("pipeline stage")

	return nil
}

// recordFailure is best effort: a failure to persist the error state is
// logged, not returned, so the stage error stays the primary one.
func (o *Orchestrator) recordFailure(ctx context.Context, profile *domain.InfluencerProfile, runErr error) {
	profile.Registration.RecordError(runErr.Error(), time.Now().UTC())

	if err := o.repo.UpdateRegistration(ctx, profile.ID, profile.Registration); err != nil {
		o.logger.Error().Err(err).
			Str("influencer_id", profile.ID.String()).
			Msg("failed to persist registration error")
	}
}

func (o *Orchestrator) acquire(id uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.active[id]; ok {
		return false
	}

	o.active[id] = struct{}{}

	return true
}

func (o *Orchestrator) release(id uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.active, id)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the unique registry key from an influencer name.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")

	return strings.Trim(slug, "-")
}
