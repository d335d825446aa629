// Package search ranks a contract's stored chunks against free-text queries.
//
// Retrieval is hybrid: the query is embedded and compared against chunk
// vectors by cosine similarity, and chunks tied to a clause the query cites
// by number are pulled in regardless of embedding distance. Chunks that
// contain every significant query word verbatim receive an additional boost.
package search
