// Package layout computes how deck cards are placed on printable pages.
//
// A page is a grid of Columns x Rows card slots. The front side lists the
// page's cards in deck order. The back side reverses every row so that, once
// the sheet is flipped on its long edge for duplex printing, each definition
// lands behind its own image. The output is index information only; rendering
// happens elsewhere.
package layout
