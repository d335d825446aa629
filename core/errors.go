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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidAnnotation indicates an EntityAnnotation failed validation.
	ErrInvalidAnnotation = errors.New("invalid entity annotation")

	// ErrInvalidChunk indicates a DocumentChunk failed validation.
	ErrInvalidChunk = errors.New("invalid document chunk")

	// ErrInvalidSpan indicates a span with start >= end.
	ErrInvalidSpan = errors.New("span start must be before span end")

	// ErrEmptyValue indicates an annotation with no matched text.
	ErrEmptyValue = errors.New("entity value cannot be empty")

	// ErrInvalidConfidence indicates a confidence outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be in [0, 1]")

	// ErrInvalidEntityType indicates an entity type outside the closed set.
	ErrInvalidEntityType = errors.New("invalid entity type")

	// ErrEmptyChunkText indicates a chunk with no text.
	ErrEmptyChunkText = errors.New("chunk text cannot be empty")

	// ErrNonContiguousSections indicates a section list with gaps or overlaps.
	ErrNonContiguousSections = errors.New("sections must be contiguous")
)
