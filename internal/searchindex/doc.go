// Package searchindex is the gallery's full-text search engine.
//
// The partitioner calls Build over the sorted catalog and writes the result
// to pagefind/pagefind.json. Clients fetch that asset and hand it to Install,
// which verifies the BLAKE3 fingerprint, builds an Engine and registers it on
// a Scope. The search connector polls the Scope until an engine appears.
//
// Matching is term-wise: every folded query term must occur in the record's
// alt text, URL or tags. Hits are ordered by fuzzy score against the alt
// text, with remaining hits in catalog order. Each hit is a MatchRef whose
// Data resolves the document. The gallery id lives in Meta["id"].
package searchindex
