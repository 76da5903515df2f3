package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

var errOracle = errors.New("oracle unavailable")

// mockOracle judges similarity from a fixed pair set and records calls.
type mockOracle struct {
	similar map[[2]string]bool
	err     error
	calls   [][2]string
}

func (m *mockOracle) AreSimilar(_ context.Context, a, b string) (bool, error) {
	m.calls = append(m.calls, [2]string{a, b})

	if m.err != nil {
		return false, m.err
	}

	return m.similar[[2]string{a, b}], nil
}

func existingClaim(text string, createdAt time.Time) domain.Claim {
	return domain.Claim{
		ID:                 uuid.New(),
		NormalizedClaim:    text,
		VerificationStatus: domain.StatusUnverified,
		CreatedAt:          createdAt,
	}
}

func candidate(text string) domain.CandidateClaim {
	return domain.CandidateClaim{InfluencerID: "inf1", ClaimText: text}
}

func TestPartitionMarksNewAndDuplicate(t *testing.T) {
	existing := []domain.Claim{
		existingClaim("garlic cures the common cold", time.Now().Add(-time.Hour)),
	}
	oracle := &mockOracle{similar: map[[2]string]bool{
		{"eating garlic heals colds", "garlic cures the common cold"}: true,
	}}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	marked, err := partitioner.Partition(context.Background(), []domain.CandidateClaim{
		candidate("eating garlic heals colds"),
		candidate("cold showers boost testosterone"),
	}, existing)
	require.NoError(t, err)
	require.Len(t, marked, 2)

	require.NotNil(t, marked[0].DuplicateOf)
	assert.Equal(t, existing[0].ID, *marked[0].DuplicateOf)
	assert.Nil(t, marked[1].DuplicateOf)
}

func TestPartitionFirstMatchWins(t *testing.T) {
	// The candidate is similar to both existing claims; the
	// earliest-inserted one must win and the scan must stop there.
	existing := []domain.Claim{
		existingClaim("claim a", time.Now().Add(-2*time.Hour)),
		existingClaim("claim b", time.Now().Add(-time.Hour)),
	}
	oracle := &mockOracle{similar: map[[2]string]bool{
		{"the candidate", "claim a"}: true,
		{"the candidate", "claim b"}: true,
	}}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	marked, err := partitioner.Partition(context.Background(),
		[]domain.CandidateClaim{candidate("the candidate")}, existing)
	require.NoError(t, err)

	require.NotNil(t, marked[0].DuplicateOf)
	assert.Equal(t, existing[0].ID, *marked[0].DuplicateOf)
	assert.Len(t, oracle.calls, 1, "scan must stop at the first match")
}

func TestPartitionIdempotent(t *testing.T) {
	existing := []domain.Claim{existingClaim("garlic cures the common cold", time.Now())}
	oracle := &mockOracle{similar: map[[2]string]bool{
		{"garlic heals colds", "garlic cures the common cold"}: true,
	}}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	first, err := partitioner.Partition(context.Background(),
		[]domain.CandidateClaim{candidate("garlic heals colds")}, existing)
	require.NoError(t, err)

	second, err := partitioner.Partition(context.Background(),
		[]domain.CandidateClaim{candidate("garlic heals colds")}, existing)
	require.NoError(t, err)

	require.NotNil(t, first[0].DuplicateOf)
	require.NotNil(t, second[0].DuplicateOf)
	assert.Equal(t, *first[0].DuplicateOf, *second[0].DuplicateOf)
}

func TestPartitionNoWithinBatchDedup(t *testing.T) {
	// Two identical candidates against an empty existing set both come
	// out as new: candidates are only compared to the persisted set.
	oracle := &mockOracle{}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	marked, err := partitioner.Partition(context.Background(), []domain.CandidateClaim{
		candidate("same claim"),
		candidate("same claim"),
	}, nil)
	require.NoError(t, err)
	require.Len(t, marked, 2)
	assert.Nil(t, marked[0].DuplicateOf)
	assert.Nil(t, marked[1].DuplicateOf)
	assert.Empty(t, oracle.calls)
}

func TestPartitionOnePairOneCall(t *testing.T) {
	existing := []domain.Claim{
		existingClaim("claim a", time.Now()),
		existingClaim("claim b", time.Now()),
	}
	oracle := &mockOracle{}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	_, err := partitioner.Partition(context.Background(), []domain.CandidateClaim{
		candidate("candidate one"),
		candidate("candidate two"),
	}, existing)
	require.NoError(t, err)
	assert.Len(t, oracle.calls, 4, "exactly one oracle call per (candidate, existing) pair")
}

func TestPartitionOracleError(t *testing.T) {
	existing := []domain.Claim{existingClaim("claim a", time.Now())}
	oracle := &mockOracle{err: errOracle}
	logger := zerolog.Nop()
	partitioner := New(oracle, &logger)

	_, err := partitioner.Partition(context.Background(),
		[]domain.CandidateClaim{candidate("the candidate")}, existing)
	require.ErrorIs(t, err, errOracle)
}
