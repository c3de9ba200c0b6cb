// Package text implements tokenization and normalization of raw UTF-8 text.
//
// Normalization lower-cases input, strips punctuation to whitespace, drops
// short, numeric, and stop-word tokens, and can optionally reduce tokens to
// a stem via deterministic suffix stripping. It is a pure function of its
// input and configuration: the same input always yields the same token
// sequence, in original order.
package text
