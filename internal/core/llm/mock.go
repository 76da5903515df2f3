package llm

import (
	"context"

	"github.com/verihealth/claimtrust/internal/core/domain"
)

// MockClient is a test double with canned responses per task.
type MockClient struct {
	Claims      []RawClaim
	ExtractErr  error
	Elements    []domain.ClaimElements
	ElementsErr error
	Stances     []domain.StanceResult
	StanceErr   error

	ExtractCalls  int
	ElementsCalls int
	StanceCalls   int
}

func (m *MockClient) ExtractClaims(_ context.Context, _ []PostInput) ([]RawClaim, error) {
	m.ExtractCalls++
	return m.Claims, m.ExtractErr
}

func (m *MockClient) ClaimElements(_ context.Context, _ []ClaimInput) ([]domain.ClaimElements, error) {
	m.ElementsCalls++
	return m.Elements, m.ElementsErr
}

func (m *MockClient) JudgeStance(_ context.Context, _ string, _ []domain.Article) ([]domain.StanceResult, error) {
	m.StanceCalls++
	return m.Stances, m.StanceErr
}
