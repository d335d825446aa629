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


package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/poiesic/contractforge/core"
)

// Values are stored as JSON. Annotation and chunk metadata are open
// string-keyed maps, so a fixed-layout binary codec cannot describe them.

// MarshalID serializes an ID to 8 big-endian bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: id needs 8 bytes, got %d", ErrSerializationFailed, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalContractRecord serializes a ContractRecord to bytes.
func MarshalContractRecord(record *core.ContractRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: contract record: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalContractRecord deserializes a ContractRecord from bytes.
func UnmarshalContractRecord(data []byte) (*core.ContractRecord, error) {
	var record core.ContractRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: contract record: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalEmbeddedChunk serializes an EmbeddedChunk to bytes.
func MarshalEmbeddedChunk(chunk *core.EmbeddedChunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalEmbeddedChunk deserializes an EmbeddedChunk from bytes.
func UnmarshalEmbeddedChunk(data []byte) (*core.EmbeddedChunk, error) {
	var chunk core.EmbeddedChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: chunk: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalAnnotations serializes an annotation list to bytes.
func MarshalAnnotations(annotations []core.EntityAnnotation) ([]byte, error) {
	data, err := json.Marshal(annotations)
	if err != nil {
		return nil, fmt.Errorf("%w: annotations: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalAnnotations deserializes an annotation list from bytes.
func UnmarshalAnnotations(data []byte) ([]core.EntityAnnotation, error) {
	var annotations []core.EntityAnnotation
	if err := json.Unmarshal(data, &annotations); err != nil {
		return nil, fmt.Errorf("%w: annotations: %w", ErrSerializationFailed, err)
	}
	return annotations, nil
}

// MarshalAuditEntry serializes an AuditEntry to bytes.
func MarshalAuditEntry(entry *core.AuditEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: audit entry: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalAuditEntry deserializes an AuditEntry from bytes.
func UnmarshalAuditEntry(data []byte) (*core.AuditEntry, error) {
	var entry core.AuditEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: audit entry: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}
