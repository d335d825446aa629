package search

import "errors"

// Sentinel errors returned by NewSearcher.
var (
	ErrRepositoryRequired = errors.New("contract repository is required")
	ErrAIProviderRequired = errors.New("AI provider is required")
)
