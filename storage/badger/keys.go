package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/contractforge/core"
)

// Key prefixes for different data types
const (
	contractRecordPrefix = "ctrrec"
	contractNumberPrefix = "ctrnum"
	chunkRecordPrefix    = "chkrec"
	chunkContractPrefix  = "chkctr"
	chunkIDSeq           = "chkseq"
	annotationPrefix     = "annrec"
	auditRecordPrefix    = "audrec"
	auditIDSeq           = "audseq"
)

// makeContractKey generates a key for a contract record by ID.
func makeContractKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", contractRecordPrefix, id))
}

// makeContractNumberKey generates a key for the contract-number index.
// Format: prefix:number
func makeContractNumberKey(contractNumber string) []byte {
	return []byte(contractNumberPrefix + ":" + contractNumber)
}

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkContractKey generates a composite key for the contract index.
// Format: prefix:contractID:chunkID
func makeChunkContractKey(contractID, chunkID core.ID) []byte {
	prefix := chunkContractPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for contractID + 8 bytes for chunkID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(contractID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkContractKey generates a partial key for per-contract
// chunk queries. Format: prefix:contractID
func makePartialChunkContractKey(contractID core.ID) []byte {
	prefix := chunkContractPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 // 8 bytes for contractID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(contractID))
	return buf
}

// makeAnnotationKey generates a key for a chunk's annotation list.
func makeAnnotationKey(chunkID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", annotationPrefix, chunkID))
}

// makeAuditKey generates a composite key for an audit log entry.
// Format: prefix:taskID:seq, with seq in BigEndian so iteration yields
// append order.
func makeAuditKey(taskID string, seq uint64) []byte {
	prefix := auditRecordPrefix + ":" + taskID + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makePartialAuditKey generates a partial key for per-task audit queries.
func makePartialAuditKey(taskID string) []byte {
	return []byte(auditRecordPrefix + ":" + taskID + ":")
}
