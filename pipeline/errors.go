package pipeline

import "errors"

var (
	// ErrRepositoryRequired is returned when a contract repository is not provided.
	ErrRepositoryRequired = errors.New("contract repository required")

	// ErrFetcherRequired is returned when an object fetcher is not provided.
	ErrFetcherRequired = errors.New("object fetcher required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrUnsupportedDocumentType indicates an unknown document-type tag.
	// Fatal and non-retryable; raised before any extraction work begins.
	ErrUnsupportedDocumentType = errors.New("unsupported document type")

	// ErrEmptyDocument indicates a document produced no text after
	// extraction.
	ErrEmptyDocument = errors.New("document produced empty text")
)
