// Package pipeline runs extract, download and replace over a set of vault
// documents.
//
// Documents are processed one at a time and links within a document are
// downloaded sequentially. A document is written at most once, after all of
// its downloads have settled, so an interrupted run never leaves a document
// half rewritten.
package pipeline
