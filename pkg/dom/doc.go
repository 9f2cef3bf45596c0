/*
Package dom wraps an HTML tree (golang.org/x/net/html) with the pieces the
reconciliation engine needs from a document: stable opaque handles for nodes,
the jembe attribute contract, a classification of every element, markup
normalization and a keyed morph primitive.

Core logic compares handles (ID), never *html.Node pointers, so it does not
depend on a particular tree implementation.
*/
package dom
