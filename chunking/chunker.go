package chunking

import (
	"regexp"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Word budgets for chunk sizing. Words are the token proxy throughout.
const (
	defaultTargetTokens  = 500
	defaultMaxTokens     = 600
	defaultOverlapTokens = 50
)

// FAR/DFARS clause header at the start of a content line, followed by a
// title. Used to split the contract clauses section.
var clauseHeaderRe = regexp.MustCompile(`(?m)^[ \t]*((?:52|252)\.\d{3}-\d{1,4})[ \t]+(.+)`)

var (
	blankLineRe    = regexp.MustCompile(`\n\s*\n`)
	indentedLineRe = regexp.MustCompile(`^[ \t]+\S`)
	tableRe        = regexp.MustCompile(`\|.*\||\t{2,}`)
	listRe         = regexp.MustCompile(`(?m)^\s*(?:[(\[][a-z0-9]+[)\]]|\d+\.|[-•*])\s+`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]\s+`)
)

// Chunker splits document text into chunks respecting clause and section
// boundaries under target/max/overlap word budgets.
type Chunker struct {
	targetTokens  int
	maxTokens     int
	overlapTokens int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithTargetTokens sets the soft per-chunk word budget.
func WithTargetTokens(n int) ChunkerOption {
	return func(c *Chunker) { c.targetTokens = n }
}

// WithMaxTokens sets the hard per-chunk word ceiling.
func WithMaxTokens(n int) ChunkerOption {
	return func(c *Chunker) { c.maxTokens = n }
}

// WithOverlapTokens sets the trailing-overlap word budget carried into the
// next chunk.
func WithOverlapTokens(n int) ChunkerOption {
	return func(c *Chunker) { c.overlapTokens = n }
}

// NewChunker creates a Chunker with the default 500/600/50 word budgets.
func NewChunker(opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		targetTokens:  defaultTargetTokens,
		maxTokens:     defaultMaxTokens,
		overlapTokens: defaultOverlapTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// ChunkDocument chunks a document using its detected sections. The clauses
// section is split at clause boundaries; everything else is
// paragraph-chunked. Chunk indices are assigned sequentially across the
// whole document in emission order.
func (c *Chunker) ChunkDocument(text string, sections []core.DetectedSection) []core.DocumentChunk {
	var chunks []core.DocumentChunk
	if len(sections) == 0 {
		chunks = c.chunkParagraphs(text, core.SectionOther, "")
	} else {
		for _, section := range sections {
			sectionText := text[section.StartChar:section.EndChar]
			if section.Type == core.SectionI {
				chunks = append(chunks, c.chunkClausesSection(sectionText)...)
			} else {
				chunks = append(chunks, c.chunkParagraphs(sectionText, section.Type, "")...)
			}
		}
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

// chunkClausesSection splits the contract clauses section at individual
// clause headers.
func (c *Chunker) chunkClausesSection(sectionText string) []core.DocumentChunk {
	headers := clauseHeaderRe.FindAllStringSubmatchIndex(sectionText, -1)
	if len(headers) == 0 {
		return c.chunkParagraphs(sectionText, core.SectionI, "")
	}

	var chunks []core.DocumentChunk

	// Text before the first clause has no clause number.
	if pre := strings.TrimSpace(sectionText[:headers[0][0]]); pre != "" {
		chunks = append(chunks, c.chunkParagraphs(pre, core.SectionI, "")...)
	}

	for i, m := range headers {
		clauseNumber := sectionText[m[2]:m[3]]
		end := len(sectionText)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		clauseText := strings.TrimSpace(sectionText[m[0]:end])
		if clauseText == "" {
			continue
		}

		if wordCount(clauseText) <= c.maxTokens {
			chunks = append(chunks, c.makeChunk(clauseText, core.SectionI, clauseNumber))
		} else {
			// Long clause: split internally, every piece keeps the number.
			chunks = append(chunks, c.chunkParagraphs(clauseText, core.SectionI, clauseNumber)...)
		}
	}
	return chunks
}

// chunkParagraphs accumulates paragraphs up to the target budget, closing
// a chunk and seeding the next with up to overlapTokens of trailing
// paragraphs (added whole, most recent first).
func (c *Chunker) chunkParagraphs(text string, sectionType core.SectionType, clauseNumber string) []core.DocumentChunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []core.DocumentChunk
	var currentParts []string
	currentWC := 0

	for _, para := range paragraphs {
		paraWC := wordCount(para)

		// A single paragraph over the hard ceiling is force-split at
		// sentence granularity.
		if paraWC > c.maxTokens {
			if len(currentParts) > 0 {
				chunks = append(chunks, c.makeChunk(strings.Join(currentParts, "\n\n"), sectionType, clauseNumber))
				currentParts = nil
				currentWC = 0
			}
			chunks = append(chunks, c.forceSplit(para, sectionType, clauseNumber)...)
			continue
		}

		if currentWC+paraWC > c.targetTokens && len(currentParts) > 0 {
			chunks = append(chunks, c.makeChunk(strings.Join(currentParts, "\n\n"), sectionType, clauseNumber))
			currentParts, currentWC = c.overlapSeed(currentParts, paraWC)
		}

		currentParts = append(currentParts, para)
		currentWC += paraWC
	}

	if len(currentParts) > 0 {
		chunks = append(chunks, c.makeChunk(strings.Join(currentParts, "\n\n"), sectionType, clauseNumber))
	}
	return chunks
}

// forceSplit splits an oversized paragraph by sentences with the same
// target/overlap accumulation as the paragraph path.
func (c *Chunker) forceSplit(text string, sectionType core.SectionType, clauseNumber string) []core.DocumentChunk {
	sentences := splitSentences(text)

	var chunks []core.DocumentChunk
	var currentParts []string
	currentWC := 0

	for _, sent := range sentences {
		sentWC := wordCount(sent)

		// A lone sentence over the hard ceiling has no boundary left to
		// split on; cut it at word granularity to hold the ceiling.
		if sentWC > c.maxTokens {
			if len(currentParts) > 0 {
				chunks = append(chunks, c.makeChunk(strings.Join(currentParts, " "), sectionType, clauseNumber))
				currentParts = nil
				currentWC = 0
			}
			for _, piece := range cutWords(sent, c.targetTokens) {
				chunks = append(chunks, c.makeChunk(piece, sectionType, clauseNumber))
			}
			continue
		}

		if currentWC+sentWC > c.targetTokens && len(currentParts) > 0 {
			chunks = append(chunks, c.makeChunk(strings.Join(currentParts, " "), sectionType, clauseNumber))
			currentParts, currentWC = c.overlapSeed(currentParts, sentWC)
		}
		currentParts = append(currentParts, sent)
		currentWC += sentWC
	}

	if len(currentParts) > 0 {
		chunks = append(chunks, c.makeChunk(strings.Join(currentParts, " "), sectionType, clauseNumber))
	}
	return chunks
}

// overlapSeed returns the trailing parts of a just-closed chunk, taken
// whole and most recent first, stopping before the overlap budget is
// exceeded. The seed is discarded entirely if carrying it would push the
// next chunk past the hard ceiling once the incoming part is added.
func (c *Chunker) overlapSeed(closedParts []string, incomingWC int) ([]string, int) {
	var seed []string
	seedWC := 0
	for i := len(closedParts) - 1; i >= 0; i-- {
		wc := wordCount(closedParts[i])
		if seedWC+wc > c.overlapTokens {
			break
		}
		seed = append([]string{closedParts[i]}, seed...)
		seedWC += wc
	}
	if seedWC+incomingWC > c.maxTokens {
		return nil, 0
	}
	return seed, seedWC
}

// makeChunk builds a chunk with computed metadata. Index is assigned later
// by the caller.
func (c *Chunker) makeChunk(text string, sectionType core.SectionType, clauseNumber string) core.DocumentChunk {
	var parent any
	if clauseNumber != "" {
		parent = clauseNumber
	}
	return core.DocumentChunk{
		Text:         text,
		SectionType:  sectionType,
		ClauseNumber: clauseNumber,
		Metadata: map[string]any{
			"word_count":    wordCount(text),
			"char_count":    len(text),
			"has_table":     tableRe.MatchString(text),
			"has_list":      listRe.MatchString(text),
			"parent_clause": parent,
		},
	}
}

// splitParagraphs splits on blank lines, plus before indented continuation
// lines within a block.
func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range blankLineRe.Split(text, -1) {
		lines := strings.Split(block, "\n")
		var current []string
		for _, line := range lines {
			if len(current) > 0 && indentedLineRe.MatchString(line) {
				paras = appendPara(paras, current)
				current = nil
			}
			current = append(current, line)
		}
		paras = appendPara(paras, current)
	}
	return paras
}

func appendPara(paras []string, lines []string) []string {
	if p := strings.TrimSpace(strings.Join(lines, "\n")); p != "" {
		paras = append(paras, p)
	}
	return paras
}

// splitSentences splits after sentence-ending punctuation, dropping the
// separating whitespace.
func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, m := range sentenceEndRe.FindAllStringIndex(text, -1) {
		out = append(out, text[last:m[0]+1])
		last = m[1]
	}
	if last < len(text) {
		out = append(out, text[last:])
	}
	return out
}

// cutWords splits text into pieces of at most budget words each.
func cutWords(text string, budget int) []string {
	words := strings.Fields(text)
	var pieces []string
	for len(words) > budget {
		pieces = append(pieces, strings.Join(words[:budget], " "))
		words = words[budget:]
	}
	if len(words) > 0 {
		pieces = append(pieces, strings.Join(words, " "))
	}
	return pieces
}
