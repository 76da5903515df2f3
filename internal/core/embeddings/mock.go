package embeddings

import "context"

// MockClient is a test double returning canned vectors per text.
type MockClient struct {
	// Vectors maps input text to its embedding. Unknown texts get a zero vector.
	Vectors map[string][]float32

	// Err, when set, is returned by every call.
	Err error

	// Calls counts Embed invocations.
	Calls int
}

func (m *MockClient) Embed(_ context.Context, texts []string) ([][]float32, error) {
	m.Calls++

	if m.Err != nil {
		return nil, m.Err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := m.Vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 0}
		}
	}

	return out, nil
}
