package ai

import "errors"

// ErrModelUnavailable indicates the statistical entity model could not be
// reached. The ingestion pipeline treats this as a signal to continue with
// pattern-based extraction only rather than failing the document.
var ErrModelUnavailable = errors.New("entity model unavailable")
