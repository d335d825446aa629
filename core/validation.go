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

import "fmt"

var validEntityTypes = map[EntityType]struct{}{
	EntityFARClause:          {},
	EntityDFARSClause:        {},
	EntityContractNumber:     {},
	EntityNAICSCode:          {},
	EntityPSCCode:            {},
	EntityCAGECode:           {},
	EntityUEINumber:          {},
	EntityDollarAmount:       {},
	EntityDate:               {},
	EntityPOPRange:           {},
	EntitySecurityLevel:      {},
	EntityCLIN:               {},
	EntityContractingOfficer: {},
	EntityScopeDescription:   {},
}

// ValidateEntityType validates that an EntityType belongs to the closed set.
func ValidateEntityType(t EntityType) error {
	if _, ok := validEntityTypes[t]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidEntityType, t)
	}
	return nil
}

// ValidateAnnotation validates an EntityAnnotation according to domain rules.
//
// Validation rules:
//   - Type must belong to the closed entity-type set
//   - Value must not be empty
//   - StartChar must be strictly less than EndChar
//   - Confidence must be in [0, 1]
//
// NOT validated:
//   - Metadata (open map, keys vary per type)
//   - Offsets against any particular text (the annotation does not know
//     which text it indexes)
func ValidateAnnotation(a *EntityAnnotation) error {
	if a == nil {
		return fmt.Errorf("%w: annotation is nil", ErrInvalidAnnotation)
	}
	if err := ValidateEntityType(a.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAnnotation, err)
	}
	if a.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAnnotation, ErrEmptyValue)
	}
	if a.StartChar >= a.EndChar {
		return fmt.Errorf("%w: %w (start=%d end=%d)", ErrInvalidAnnotation, ErrInvalidSpan, a.StartChar, a.EndChar)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("%w: %w (confidence=%v)", ErrInvalidAnnotation, ErrInvalidConfidence, a.Confidence)
	}
	return nil
}

// ValidateChunk validates a DocumentChunk according to domain rules.
func ValidateChunk(c *DocumentChunk) error {
	if c == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyChunkText)
	}
	if c.Index < 0 {
		return fmt.Errorf("%w: index %d is negative", ErrInvalidChunk, c.Index)
	}
	return nil
}

// ValidateSections checks the structural invariant of a detected section
// list: sorted by start, contiguous, and ending at textLen.
func ValidateSections(sections []DetectedSection, textLen int) error {
	for i, s := range sections {
		if s.StartChar >= s.EndChar {
			return fmt.Errorf("%w: section %d has start=%d end=%d", ErrInvalidSpan, i, s.StartChar, s.EndChar)
		}
		if i+1 < len(sections) && s.EndChar != sections[i+1].StartChar {
			return fmt.Errorf("%w: section %d ends at %d but section %d starts at %d",
				ErrNonContiguousSections, i, s.EndChar, i+1, sections[i+1].StartChar)
		}
	}
	if n := len(sections); n > 0 && sections[n-1].EndChar != textLen {
		return fmt.Errorf("%w: last section ends at %d, text length is %d",
			ErrNonContiguousSections, sections[n-1].EndChar, textLen)
	}
	return nil
}
