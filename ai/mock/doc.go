// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.EntityModel,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vectors, err := mockProvider.Embedder().EmbedTexts(ctx, texts)
//
//	// Custom behavior injection
//	mockModel := mock.NewMockEntityModel()
//	mockModel.ExtractEntitiesFunc = func(ctx context.Context, text string) ([]core.EntityAnnotation, error) {
//	    return nil, ai.ErrModelUnavailable
//	}
//
//	// Check call counts
//	count := mockModel.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockEntityModel: Returns no predictions
//   - MockProvider: Aggregates mock embedder and entity model
package mock
