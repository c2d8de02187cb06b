package llm

import "context"

// MockClient is a Client stub for tests.
type MockClient struct {
	Response  string
	Err       error
	ModelName string

	// Responses, when non-empty, is consumed one entry per call before
	// falling back to Response. Useful for retry tests.
	Responses []string
	Errs      []error

	Calls int
}

func (m *MockClient) Complete(_ context.Context, _, _ string) (string, error) {
	i := m.Calls
	m.Calls++

	if i < len(m.Errs) && m.Errs[i] != nil {
		return "", m.Errs[i]
	}
	if i < len(m.Responses) {
		return m.Responses[i], nil
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockClient) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock"
}

var _ Client = (*MockClient)(nil)
