package extract

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verihealth/claimtrust/internal/core/domain"
	apperrors "github.com/verihealth/claimtrust/internal/core/errors"
	"github.com/verihealth/claimtrust/internal/core/llm"
)

func testPosts() []domain.Post {
	return []domain.Post{{
		ID:            uuid.New(),
		InfluencerID:  uuid.New(),
		SocialNetwork: domain.NetworkInstagram,
		URL:           "https://instagram.com/p/p1",
		Content:       "Eating garlic cures the common cold! Also check my merch.",
	}}
}

func TestExtractLowercasesClaims(t *testing.T) {
	mock := &llm.MockClient{Claims: []llm.RawClaim{{
		InfluencerID: "inf1",
		Claim:        "Garlic CURES the Common Cold",
		OriginalText: "Eating garlic cures the common cold!",
		PostURL:      "https://instagram.com/p/p1",
		Categories:   []string{"sickness treatment"},
	}}}
	logger := zerolog.Nop()
	extractor := New(mock, &logger)

	candidates, err := extractor.Extract(context.Background(), testPosts())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "garlic cures the common cold", candidates[0].ClaimText)
	assert.Equal(t, []string{"sickness treatment"}, candidates[0].Categories)
	assert.Equal(t, 1, mock.ExtractCalls, "one LLM request per batch")
}

func TestExtractDropsUnknownCategories(t *testing.T) {
	mock := &llm.MockClient{Claims: []llm.RawClaim{{
		InfluencerID: "inf1",
		Claim:        "cold showers boost testosterone",
		Categories:   []string{"fitness", "bro science"},
	}}}
	logger := zerolog.Nop()
	extractor := New(mock, &logger)

	candidates, err := extractor.Extract(context.Background(), testPosts())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, []string{"fitness"}, candidates[0].Categories)
}

func TestExtractEmptyContentFails(t *testing.T) {
	mock := &llm.MockClient{ExtractErr: apperrors.ErrNoContent}
	logger := zerolog.Nop()
	extractor := New(mock, &logger)

	_, err := extractor.Extract(context.Background(), testPosts())
	require.ErrorIs(t, err, apperrors.ErrExtraction)
	require.ErrorIs(t, err, apperrors.ErrNoContent)
}

func TestExtractNoPosts(t *testing.T) {
	mock := &llm.MockClient{}
	logger := zerolog.Nop()
	extractor := New(mock, &logger)

	candidates, err := extractor.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Zero(t, mock.ExtractCalls)
}

func TestExtractPostWithoutClaims(t *testing.T) {
	mock := &llm.MockClient{Claims: nil}
	logger := zerolog.Nop()
	extractor := New(mock, &logger)

	candidates, err := extractor.Extract(context.Background(), testPosts())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
