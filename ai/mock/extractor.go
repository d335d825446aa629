package mock

import (
	"context"

	"github.com/poiesic/contractforge/core"
)

// MockEntityModel is a test double for ai.EntityModel.
// It allows custom behavior injection via function fields.
type MockEntityModel struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default behavior (no predictions).
	ExtractEntitiesFunc func(ctx context.Context, text string) ([]core.EntityAnnotation, error)

	callCount int
}

// NewMockEntityModel creates a mock entity model with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockEntityModel().
func NewMockEntityModel() *MockEntityModel {
	return &MockEntityModel{}
}

// ExtractEntities returns model-predicted entity annotations for text.
// Default behavior: no predictions, mirroring a model that found nothing.
// Tests inject ExtractEntitiesFunc to simulate predictions or an
// unavailable backend.
func (m *MockEntityModel) ExtractEntities(ctx context.Context, text string) ([]core.EntityAnnotation, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	return []core.EntityAnnotation{}, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityModel) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
