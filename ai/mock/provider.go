// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/contractforge/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder and entity model instances.
type MockProvider struct {
	embedder    *MockEmbedder
	entityModel *MockEntityModel
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockEmbedder()/GetMockEntityModel() to access concrete types for
// test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:    NewMockEmbedder(),
		entityModel: NewMockEntityModel(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, entityModel *MockEntityModel) ai.Provider {
	return &MockProvider{
		embedder:    embedder,
		entityModel: entityModel,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// EntityModel returns the mock entity model.
func (p *MockProvider) EntityModel() ai.EntityModel {
	return p.entityModel
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockEntityModel returns the underlying mock entity model for test assertions.
// This allows tests to check call counts and inject custom behavior.
func (p *MockProvider) GetMockEntityModel() *MockEntityModel {
	return p.entityModel
}
