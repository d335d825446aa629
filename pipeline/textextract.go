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

package pipeline

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ExtractText converts raw document bytes into plain text based on the
// document-type tag. Supported types are "txt", "docx" and "pdf". An
// unknown type or a document yielding only whitespace is fatal.
func ExtractText(content []byte, docType string) (string, error) {
	var text string
	var err error

	switch strings.ToLower(docType) {
	case "txt":
		text = string(content)
	case "docx":
		text, err = extractDocxText(content)
	case "pdf":
		text, err = extractPdfText(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDocumentType, docType)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

// extractDocxText pulls paragraph text out of a docx archive. Paragraphs
// are joined with blank lines, matching how the documents read on screen.
func extractDocxText(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("opening docx archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("docx archive missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("opening word/document.xml: %w", err)
	}
	defer rc.Close()

	var paragraphs []string
	decoder := xml.NewDecoder(rc)
	var current strings.Builder
	inParagraph, inText := false, false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing word/document.xml: %w", err)
		}
		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "p":
				if inParagraph && current.Len() > 0 {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(tok)
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// extractPdfText decodes PDF bytes that are already text-bearing. Scanned
// PDFs without a text layer come through empty and fail the empty-text
// check downstream.
func extractPdfText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return string(bytes.ToValidUTF8(content, nil)), nil
}
