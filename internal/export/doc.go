// Package export turns a deck into downloadable artifacts: a zip archive of
// the card images, a JSON manifest of the card data and a printable HTML
// document with front and back pages ready for duplex printing.
//
// Exports operate on plain card slices and layout pages. Deciding whether a
// deck may be exported at all (a batch still running, an empty deck) is the
// caller's concern; the functions here only enforce their own preconditions.
package export
