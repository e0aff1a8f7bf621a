package llm

import "context"

// mockClient stands in when no provider credentials are configured. It
// answers affirmatively, which keeps every pipeline stage reachable in
// local development.
type mockClient struct {
	*documentStore
}

func NewMock() Client {
	return &mockClient{documentStore: newDocumentStore()}
}

func (c *mockClient) GenerateText(_ context.Context, _ string, _ Options) (string, error) {
	return "YES", nil
}

func (c *mockClient) ChatWithHistory(_ context.Context, _ []Turn, _ Options) (string, error) {
	return "This is a mock reply.", nil
}
