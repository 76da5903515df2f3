package claims

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verihealth/claimtrust/internal/core/domain"
	"github.com/verihealth/claimtrust/internal/core/embeddings"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
)

// fakeRepo is an in-memory Repository keeping insertion order.
type fakeRepo struct {
	claims []domain.Claim
}

func (f *fakeRepo) InsertClaim(_ context.Context, claim *domain.Claim) error {
	claim.ID = uuid.New()
	claim.CreatedAt = time.Now().Add(time.Duration(len(f.claims)) * time.Second)
	f.claims = append(f.claims, *claim)

	return nil
}

func (f *fakeRepo) GetClaim(_ context.Context, id uuid.UUID) (*domain.Claim, error) {
	for i := range f.claims {
		if f.claims[i].ID == id {
			claim := f.claims[i]
			return &claim, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

func (f *fakeRepo) ListClaims(_ context.Context) ([]domain.Claim, error) {
	return append([]domain.Claim(nil), f.claims...), nil
}

func (f *fakeRepo) GetClaimByNormalized(_ context.Context, normalized string) (*domain.Claim, error) {
	for i := range f.claims {
		if f.claims[i].NormalizedClaim == normalized {
			claim := f.claims[i]
			return &claim, nil
		}
	}

	return nil, apperrors.ErrNotFound
}

func (f *fakeRepo) FilterClaims(_ context.Context, textTerms []string, categories []string) ([]domain.Claim, error) {
	var out []domain.Claim

claims:
	for _, claim := range f.claims {
		if len(textTerms) > 0 && !containsAny(claim.NormalizedClaim, textTerms) {
			continue
		}

		have := make(map[string]struct{}, len(claim.Categories))
		for _, c := range claim.Categories {
			have[c] = struct{}{}
		}

		for _, c := range categories {
			if _, ok := have[c]; !ok {
				continue claims
			}
		}

		out = append(out, claim)
	}

	return out, nil
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}

	return false
}

func (f *fakeRepo) UpdateClaimSources(_ context.Context, id uuid.UUID, sources map[string]domain.ClaimSource) error {
	for i := range f.claims {
		if f.claims[i].ID == id {
			f.claims[i].Sources = sources
			return nil
		}
	}

	return apperrors.ErrNotFound
}

func (f *fakeRepo) DeleteClaim(_ context.Context, id uuid.UUID) error {
	for i := range f.claims {
		if f.claims[i].ID == id {
			f.claims = append(f.claims[:i], f.claims[i+1:]...)
			return nil
		}
	}

	return apperrors.ErrNotFound
}

func newManager(repo *fakeRepo, embedder embeddings.Client) *Manager {
	logger := zerolog.Nop()
	return New(repo, embedder, &logger)
}

func newCandidate(influencerID, text string, categories ...string) domain.MarkedCandidate {
	return domain.MarkedCandidate{CandidateClaim: domain.CandidateClaim{
		InfluencerID: influencerID,
		ClaimText:    text,
		OriginalText: strings.ToUpper(text),
		PostURL:      "https://instagram.com/p/x",
		Categories:   categories,
	}}
}

func TestAddNewInsertsUnverified(t *testing.T) {
	repo := &fakeRepo{}
	embedder := &embeddings.MockClient{Vectors: map[string][]float32{
		"garlic cures colds": {0.1, 0.2, 0.3},
	}}
	manager := newManager(repo, embedder)

	inserted, err := manager.AddNew(context.Background(), []domain.MarkedCandidate{
		newCandidate("inf1", "garlic cures colds", "sickness treatment"),
		newCandidate("inf1", "sunscreen is toxic", "beauty"),
	})
	require.NoError(t, err)
	require.Len(t, inserted, 2)

	assert.Equal(t, domain.StatusUnverified, inserted[0].VerificationStatus)
	assert.Nil(t, inserted[0].Score)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, inserted[0].Embedding)
	assert.Equal(t, "GARLIC CURES COLDS", inserted[0].Sources["inf1"].OriginalText)
	assert.Equal(t, 1, embedder.Calls, "one embedding request per batch")
}

func TestAddNewMergesDuplicateSources(t *testing.T) {
	repo := &fakeRepo{}
	manager := newManager(repo, &embeddings.MockClient{})

	inserted, err := manager.AddNew(context.Background(),
		[]domain.MarkedCandidate{newCandidate("inf1", "garlic cures colds")})
	require.NoError(t, err)

	duplicate := newCandidate("inf2", "eating garlic heals colds")
	duplicate.DuplicateOf = &inserted[0].ID

	more, err := manager.AddNew(context.Background(), []domain.MarkedCandidate{duplicate})
	require.NoError(t, err)
	assert.Empty(t, more, "duplicates insert nothing")

	claim, err := repo.GetClaim(context.Background(), inserted[0].ID)
	require.NoError(t, err)
	require.Len(t, claim.Sources, 2)
	assert.Equal(t, "EATING GARLIC HEALS COLDS", claim.Sources["inf2"].OriginalText)
}

func TestAddNewOverwritesAttributionPerInfluencer(t *testing.T) {
	repo := &fakeRepo{}
	manager := newManager(repo, &embeddings.MockClient{})

	inserted, err := manager.AddNew(context.Background(),
		[]domain.MarkedCandidate{newCandidate("inf1", "garlic cures colds")})
	require.NoError(t, err)

	repeat := newCandidate("inf1", "garlic definitely cures colds")
	repeat.DuplicateOf = &inserted[0].ID
	repeat.PostURL = "https://instagram.com/p/new"

	_, err = manager.AddNew(context.Background(), []domain.MarkedCandidate{repeat})
	require.NoError(t, err)

	claim, err := repo.GetClaim(context.Background(), inserted[0].ID)
	require.NoError(t, err)
	require.Len(t, claim.Sources, 1)
	assert.Equal(t, "GARLIC DEFINITELY CURES COLDS", claim.Sources["inf1"].OriginalText)
	assert.Equal(t, "https://instagram.com/p/new", claim.Sources["inf1"].PostURL)
}

func TestAddNewResolvesStaleDuplicateByText(t *testing.T) {
	repo := &fakeRepo{}
	manager := newManager(repo, &embeddings.MockClient{})

	inserted, err := manager.AddNew(context.Background(),
		[]domain.MarkedCandidate{newCandidate("inf1", "garlic cures colds")})
	require.NoError(t, err)

	stale := uuid.New()
	duplicate := newCandidate("inf2", "garlic cures colds")
	duplicate.DuplicateOf = &stale

	_, err = manager.AddNew(context.Background(), []domain.MarkedCandidate{duplicate})
	require.NoError(t, err)

	claim, err := repo.GetClaim(context.Background(), inserted[0].ID)
	require.NoError(t, err)
	assert.Contains(t, claim.Sources, "inf2", "stale IDs fall back to text resolution")
}

func TestAddNewUnresolvedDuplicate(t *testing.T) {
	repo := &fakeRepo{}
	manager := newManager(repo, &embeddings.MockClient{})

	missing := uuid.New()
	duplicate := newCandidate("inf1", "garlic cures colds")
	duplicate.DuplicateOf = &missing

	_, err := manager.AddNew(context.Background(), []domain.MarkedCandidate{duplicate})
	require.ErrorIs(t, err, apperrors.ErrClaimNotResolved)
}

func TestAddNewEmbeddingFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepo{}
	embedder := &embeddings.MockClient{Err: embeddings.ErrEmptyResponse}
	manager := newManager(repo, embedder)

	inserted, err := manager.AddNew(context.Background(),
		[]domain.MarkedCandidate{newCandidate("inf1", "garlic cures colds")})
	require.NoError(t, err)
	require.Len(t, inserted, 1)
	assert.Nil(t, inserted[0].Embedding)
}

func TestFetchFiltersByTermsAndCategories(t *testing.T) {
	repo := &fakeRepo{}
	manager := newManager(repo, &embeddings.MockClient{})

	_, err := manager.AddNew(context.Background(), []domain.MarkedCandidate{
		newCandidate("inf1", "garlic cures the common cold", "sickness treatment", "nutrition"),
		newCandidate("inf1", "garlic lowers blood pressure", "nutrition"),
		newCandidate("inf1", "cold showers boost immunity", "immunity and infection"),
	})
	require.NoError(t, err)

	got, err := manager.Fetch(context.Background(), "garlic+shower", nil)
	require.NoError(t, err)
	require.Len(t, got, 3, "terms match any, not all")

	got, err = manager.Fetch(context.Background(), "pressure", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "garlic lowers blood pressure", got[0].NormalizedClaim)

	got, err = manager.Fetch(context.Background(), "", []string{"Nutrition", "sickness+treatment"})
	require.NoError(t, err)
	require.Len(t, got, 1, "claim must carry every requested category")
	assert.Equal(t, "garlic cures the common cold", got[0].NormalizedClaim)
}

func TestFetchRejectsUnknownCategory(t *testing.T) {
	manager := newManager(&fakeRepo{}, &embeddings.MockClient{})

	_, err := manager.Fetch(context.Background(), "", []string{"bro science"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDeleteMissingClaim(t *testing.T) {
	manager := newManager(&fakeRepo{}, &embeddings.MockClient{})

	err := manager.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSplitTerms(t *testing.T) {
	assert.Nil(t, SplitTerms(""))
	assert.Equal(t, []string{"garlic"}, SplitTerms("garlic"))
	assert.Equal(t, []string{"garlic", "cold"}, SplitTerms("garlic+cold"))
	assert.Equal(t, []string{"garlic", "cold"}, SplitTerms(" garlic ++ cold "))
}
