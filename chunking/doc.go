// Package chunking splits federal contract documents into token-bounded
// chunks aligned to Uniform Contract Format (UCF) section and clause
// boundaries, rather than arbitrary token windows.
//
// The SectionDetector finds the letter-coded UCF section headers. The
// Chunker splits each section at paragraph boundaries under a target word
// budget with a trailing-overlap seed, special-casing the contract clauses
// section (Section I), which is split at individual FAR/DFARS clause
// headers. The DocumentProcessor ties the two together and is the sole
// entry point callers should use.
//
// Word counts stand in for encoder tokens; chunks are sized for a
// fixed-width text encoder context window.
package chunking
