package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/contractforge/core"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {
            "type": "string"
          },
          "value": {
            "type": "string",
            "minLength": 1
          },
          "start": {
            "type": "integer",
            "minimum": 0
          },
          "end": {
            "type": "integer",
            "minimum": 1
          }
        },
        "required": ["type", "value", "start", "end"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `You are a named-entity recognizer for US federal contract documents.
Find every entity of the listed types in the given text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Type field must match exactly one of the listed values: %s.
- Value must be the exact text as it appears in the document, character for character. Never paraphrase or normalize it.
- Start and end are character offsets of the value within the input text, half-open (end is one past the last character).
- Include only entities that literally appear in the text. Do not hallucinate.
- CONTRACTING_OFFICER is the named government official administering the contract.
- SCOPE_DESCRIPTION is a short phrase stating what is being procured.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Contract W911NF-22-C-0012 is administered by Jane Smith, Contracting Officer."
Output:
{
  "entities": [
    {"type":"CONTRACT_NUMBER","value":"W911NF-22-C-0012","start":9,"end":25},
    {"type":"CONTRACTING_OFFICER","value":"Jane Smith","start":45,"end":55}
  ]
}`

// buildExtractionPrompt creates the system prompt with entity types embedded.
func buildExtractionPrompt() string {
	names := make([]string, len(core.AllEntityTypes))
	for i, t := range core.AllEntityTypes {
		names[i] = string(t)
	}
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(names, ", "))
}
