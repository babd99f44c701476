package imagesearch

import (
	"context"
	"fmt"
	"net/url"

	"productflow-backend/internal/domains/product/model"
)

// =====================================================
// MOCK IMAGE RESOLVER FOR TESTING / LOCAL DEV
// =====================================================

type MockResolver struct {
	ShouldFail bool
	// NoResult makes every lookup come back empty.
	NoResult bool
}

func NewMockResolver() *MockResolver {
	return &MockResolver{}
}

func (m *MockResolver) FindPrimaryImage(_ context.Context, identity model.ProductIdentity) (string, error) {
	if m.ShouldFail {
		return "", fmt.Errorf("mock image search failure")
	}
	if m.NoResult {
		return "", nil
	}

	query := identity.SearchQuery()
	if query == "" {
		return "", nil
	}
	return fmt.Sprintf("https://images.example.com/%s.jpg", url.PathEscape(query)), nil
}
