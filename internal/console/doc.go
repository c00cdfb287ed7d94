// Package console defines the operator-facing output sink used by workflow
// strategies, including interactive confirmation prompts and per-change
// progress prefixing for interleaved output.
package console
