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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// EntityModel implements ai.EntityModel using OpenAI-compatible chat APIs
// in JSON mode.
type EntityModel struct {
	client llms.Model
	schema *jsonschema.Schema
	logger *slog.Logger
}

// rawEntity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the model.
type rawEntity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// extraction is the wrapper structure for the model's JSON response.
type extraction struct {
	Entities []rawEntity `json:"entities"`
}

// newEntityModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityModel(config *ai.Config) (*EntityModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EntityModelHost),
		openai.WithToken("none"),
		openai.WithModel(config.EntityModel),
	)
	if err != nil {
		return nil, err
	}

	schema, err := jsonschema.NewCompiler().Compile([]byte(extractionResponseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile extraction schema: %w", err)
	}

	return &EntityModel{
		client: client,
		schema: schema,
		logger: slog.Default().With("component", "openai-entity-model"),
	}, nil
}

// NewEntityModel creates a new statistical entity model using the provided
// configuration.
//
// Returns ai.EntityModel interface to enforce abstraction.
func NewEntityModel(config *ai.Config) (ai.EntityModel, error) {
	return newEntityModel(config)
}

// ExtractEntities predicts labeled entity spans in text using an LLM.
// A transport failure is reported as ai.ErrModelUnavailable so the caller
// can fall back to pattern-only extraction.
func (m *EntityModel) ExtractEntities(ctx context.Context, text string) ([]core.EntityAnnotation, error) {
	systemPrompt := buildExtractionPrompt()
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			m.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %v", ai.ErrModelUnavailable, err)
		}

		if len(response.Choices) < 1 {
			m.logger.Debug("no choices returned from model")
			return []core.EntityAnnotation{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if vr := m.schema.ValidateJSON([]byte(responseText)); !vr.IsValid() {
			lastErr = fmt.Errorf("response failed schema validation: %v", vr.Errors)
			m.logger.Warn("model response failed schema validation",
				"attempt", attempt+1,
				"response", responseText)
			continue
		}

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			m.logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		m.logger.Error("failed to parse model response after retries", "err", lastErr)
		return nil, lastErr
	}

	annotations := m.anchor(text, result.Entities)

	sort.SliceStable(annotations, func(i, j int) bool {
		if annotations[i].StartChar != annotations[j].StartChar {
			return annotations[i].StartChar < annotations[j].StartChar
		}
		return annotations[i].Type < annotations[j].Type
	})

	m.logger.Debug("extracted entities",
		"predicted", len(result.Entities),
		"anchored", len(annotations))
	return annotations, nil
}

// anchor converts raw model predictions into annotations with offsets
// verified against the source text. Model-reported offsets are unreliable;
// when they do not reproduce the predicted value verbatim the value is
// located by search instead, and predictions whose value does not occur in
// the text at all are dropped.
func (m *EntityModel) anchor(text string, raw []rawEntity) []core.EntityAnnotation {
	annotations := make([]core.EntityAnnotation, 0, len(raw))
	for _, re := range raw {
		entityType := core.EntityType(strings.ToUpper(strings.TrimSpace(re.Type)))
		if err := core.ValidateEntityType(entityType); err != nil {
			m.logger.Debug("dropping prediction with unknown type", "type", re.Type)
			continue
		}
		value := strings.TrimSpace(re.Value)
		if value == "" {
			continue
		}

		start, end := re.Start, re.End
		if start < 0 || end > len(text) || start >= end || text[start:end] != value {
			idx := strings.Index(text, value)
			if idx < 0 {
				m.logger.Debug("dropping prediction not found in text", "value", value)
				continue
			}
			start, end = idx, idx+len(value)
		}

		annotations = append(annotations, core.EntityAnnotation{
			Type:       entityType,
			Value:      value,
			StartChar:  start,
			EndChar:    end,
			Confidence: 0.0,
			Metadata:   map[string]any{"source": "model"},
		})
	}
	return annotations
}
