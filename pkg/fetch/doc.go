// Package fetch is the text-extraction collaborator: it turns a file path
// or URL into plain text, stripping HTML boilerplate via readability.
// Fetches are bounded by a timeout and a payload ceiling; exceeding the
// ceiling is reported as ErrPayloadTooLarge, a distinct condition from a
// fetch failure. Successful URL extractions are cached in badger so a
// batch that names the same URL twice downloads it once.
package fetch
