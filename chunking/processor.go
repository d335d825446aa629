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


package chunking

import (
	"strings"

	"github.com/poiesic/contractforge/core"
)

// DocumentProcessor orchestrates section detection and clause-aware
// chunking over a whole document. It is the entry point surrounding code
// should call; the detector and chunker are implementation detail.
type DocumentProcessor struct {
	chunker *Chunker
}

// NewDocumentProcessor creates a processor with the given chunker options.
func NewDocumentProcessor(opts ...ChunkerOption) *DocumentProcessor {
	return &DocumentProcessor{chunker: NewChunker(opts...)}
}

// Process chunks a full contract document.
//
// The document is trimmed first; an empty document yields no chunks. When
// no section headers are found the whole document is paragraph-chunked as
// OTHER with no clause numbers. Every chunk's metadata is stamped with the
// caller-supplied document identifier.
func (p *DocumentProcessor) Process(text, documentID string) []core.DocumentChunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sections := DetectSections(text)
	chunks := p.chunker.ChunkDocument(text, sections)

	for i := range chunks {
		chunks[i].Metadata["document_id"] = documentID
	}
	return chunks
}
