// Package catalog describes the static gallery catalog and reads it over HTTP.
//
// # Layout
//
// The partitioner writes three kinds of files under the site root:
//
//   - /json/cizelge.json: tag and update tables plus pagination metadata
//   - /json/page-N.json: the items of page N (1-based), compact keys
//   - /pagefind/pagefind.json: the search index asset
//
// Page files use short keys to keep fragments small:
//
//	{"id":"…","h":"/sunum/x","s":"/img/x.webp","a":"alt text","t":["tag"],"p":true}
//
// # Errors
//
// Fetch operations return typed errors so callers can tell transport problems
// from malformed content:
//
//   - *NetworkError: connection failure or a status outside 2xx
//   - *ParseError: the body is not the expected JSON document
//
// Use errors.As to inspect them. The client performs no retries and no
// caching. The gallery controller decides when to fetch again.
//
// # Pagination
//
// TotalPages always returns at least one, even for an empty catalog, so a
// fresh site still has a valid first page.
package catalog
