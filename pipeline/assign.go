package pipeline

import (
	"strings"

	"github.com/poiesic/contractforge/core"
)

// AssignEntitiesToChunks maps each document-level entity onto the chunk
// containing its matched text, re-indexed to chunk-local offsets.
//
// Matching is by verbatim text search: the first chunk whose text contains
// the entity's value wins, and repeated identical entity text always maps
// to that first chunk. An entity whose text is found in no chunk (it
// straddled a chunk boundary) is silently dropped from the per-chunk
// result; callers still count it in document-level totals.
func AssignEntitiesToChunks(entities []core.EntityAnnotation, chunks []core.DocumentChunk) [][]core.EntityAnnotation {
	result := make([][]core.EntityAnnotation, len(chunks))

	for _, entity := range entities {
		for i := range chunks {
			localStart := strings.Index(chunks[i].Text, entity.Value)
			if localStart < 0 {
				continue
			}
			local := core.EntityAnnotation{
				Type:       entity.Type,
				Value:      entity.Value,
				StartChar:  localStart,
				EndChar:    localStart + len(entity.Value),
				Confidence: entity.Confidence,
				Metadata:   copyMetadata(entity.Metadata),
			}
			result[i] = append(result[i], local)
			break
		}
	}

	return result
}

func copyMetadata(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
