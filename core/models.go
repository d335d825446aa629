package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityType identifies the kind of entity an annotation labels.
// The set is closed: behavior differs per type only in which pattern
// produced it and which metadata keys apply.
type EntityType string

const (
	EntityFARClause          EntityType = "FAR_CLAUSE"
	EntityDFARSClause        EntityType = "DFARS_CLAUSE"
	EntityContractNumber     EntityType = "CONTRACT_NUMBER"
	EntityNAICSCode          EntityType = "NAICS_CODE"
	EntityPSCCode            EntityType = "PSC_CODE"
	EntityCAGECode           EntityType = "CAGE_CODE"
	EntityUEINumber          EntityType = "UEI_NUMBER"
	EntityDollarAmount       EntityType = "DOLLAR_AMOUNT"
	EntityDate               EntityType = "DATE"
	EntityPOPRange           EntityType = "POP_RANGE"
	EntitySecurityLevel      EntityType = "SECURITY_LEVEL"
	EntityCLIN               EntityType = "CLIN"
	EntityContractingOfficer EntityType = "CONTRACTING_OFFICER"
	EntityScopeDescription   EntityType = "SCOPE_DESCRIPTION"
)

// AllEntityTypes lists every member of the closed entity-type set.
var AllEntityTypes = []EntityType{
	EntityFARClause,
	EntityDFARSClause,
	EntityContractNumber,
	EntityNAICSCode,
	EntityPSCCode,
	EntityCAGECode,
	EntityUEINumber,
	EntityDollarAmount,
	EntityDate,
	EntityPOPRange,
	EntitySecurityLevel,
	EntityCLIN,
	EntityContractingOfficer,
	EntityScopeDescription,
}

// EntityAnnotation is a typed span located in document text.
//
// StartChar and EndChar are half-open byte offsets into the UTF-8 text the
// annotation was produced against. Offsets stay document-relative until the
// annotation is explicitly re-indexed onto chunk-local coordinates; it is
// never mutated otherwise.
type EntityAnnotation struct {
	Type       EntityType
	Value      string // exact matched text
	StartChar  int
	EndChar    int
	Confidence float64        // 1.0 for rule matches, 0.0 for model predictions
	Metadata   map[string]any // open per-type keys (clause_base, iso_date, normalized_value, ...)
}

// Span returns the annotation's document span.
func (a EntityAnnotation) Span() Span {
	return Span{Start: a.StartChar, End: a.EndChar}
}

// SectionType identifies one of the thirteen letter-coded Uniform Contract
// Format sections, or OTHER for unrecognized structure.
type SectionType string

const (
	SectionA     SectionType = "SECTION_A"
	SectionB     SectionType = "SECTION_B"
	SectionC     SectionType = "SECTION_C"
	SectionD     SectionType = "SECTION_D"
	SectionE     SectionType = "SECTION_E"
	SectionF     SectionType = "SECTION_F"
	SectionG     SectionType = "SECTION_G"
	SectionH     SectionType = "SECTION_H"
	SectionI     SectionType = "SECTION_I"
	SectionJ     SectionType = "SECTION_J"
	SectionK     SectionType = "SECTION_K"
	SectionL     SectionType = "SECTION_L"
	SectionM     SectionType = "SECTION_M"
	SectionOther SectionType = "OTHER"
)

// SectionForLetter maps a UCF section letter (A-M, any case) to its
// SectionType. The second return value is false for anything else.
func SectionForLetter(letter byte) (SectionType, bool) {
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'M' {
		return "", false
	}
	return SectionType("SECTION_" + string(letter)), true
}

// DetectedSection is a section boundary found in document text.
// For a detected list, sections are sorted by StartChar, contiguous
// (each section's EndChar is the next section's StartChar), and the last
// section ends at the text length.
type DetectedSection struct {
	Type       SectionType
	StartChar  int
	EndChar    int
	HeaderText string
}

// DocumentChunk is a contiguous text unit sized for a fixed-width text
// encoder, tagged with the section (and clause, if any) it came from.
// Index values for a document form a contiguous 0-based sequence in
// emission order.
type DocumentChunk struct {
	Text         string
	SectionType  SectionType
	ClauseNumber string // empty when the chunk is not tied to a clause
	Index        int
	Metadata     map[string]any // word_count, char_count, has_table, has_list, parent_clause, document_id
}

// WordCount returns the chunk's whitespace-token count from metadata.
func (c DocumentChunk) WordCount() int {
	if wc, ok := c.Metadata["word_count"].(int); ok {
		return wc
	}
	return 0
}

// EmbeddedChunk pairs a chunk with its embedding vector.
type EmbeddedChunk struct {
	Chunk  DocumentChunk
	Vector []float32
}

// ChunkMatch pairs a stored chunk with its search relevance score.
type ChunkMatch struct {
	Chunk *EmbeddedChunk
	Score float32
}

// ContractMetadata is the fixed record projected from a document's entity
// list. Scalar fields are set at most once (first qualifying entity wins);
// the clause lists accumulate every occurrence in entity order.
type ContractMetadata struct {
	ContractNumber         string
	CeilingValue           string
	FundedValue            string
	PopStart               string // ISO date
	PopEnd                 string // ISO date
	NAICSCode              string
	PSCCode                string
	CAGECode               string
	UEINumber              string
	SecurityLevel          string
	ContractingOfficerName string
	FARClauses             []string
	DFARSClauses           []string
}

// ContractRecord is the persisted form of a contract, keyed by contract
// number for idempotent upserts.
type ContractRecord struct {
	Id         ID
	Metadata   ContractMetadata
	ObjectKey  string // object-store key of the source document
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// IssueSeverity grades a quality issue.
type IssueSeverity string

const (
	SeverityWarning IssueSeverity = "WARNING"
	SeverityError   IssueSeverity = "ERROR"
)

// QualityIssue is a single problem found while checking extraction output.
type QualityIssue struct {
	Severity IssueSeverity
	Code     string // stable identifier, e.g. MISSING_CONTRACT_NUMBER
	Message  string
	Details  map[string]any
}

// QualityReport is the overall verdict for a document ingestion.
// NeedsHumanReview is true iff at least one review-triggering rule fired;
// ReviewReasons holds one human-readable reason per triggering rule.
type QualityReport struct {
	Issues           []QualityIssue
	NeedsHumanReview bool
	ReviewReasons    []string
	EntityCount      int
	ChunkCount       int
}

// ErrorCount returns the number of ERROR-severity issues.
func (r *QualityReport) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of WARNING-severity issues.
func (r *QualityReport) WarningCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// AuditStatus is the lifecycle state recorded in the audit log.
type AuditStatus string

const (
	AuditRunning     AuditStatus = "RUNNING"
	AuditSuccess     AuditStatus = "SUCCESS"
	AuditNeedsReview AuditStatus = "NEEDS_REVIEW"
	AuditFailure     AuditStatus = "FAILURE"
)

// AuditEntry records one pipeline execution event.
type AuditEntry struct {
	AgentType     string
	TaskId        string
	Status        AuditStatus
	InputSummary  map[string]any
	OutputSummary map[string]any
	ErrorDetails  string
	StartedAt     time.Time
}
