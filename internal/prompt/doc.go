// Package prompt builds the natural-language instruction sent to the image
// generator for a single card.
//
// The policy has three branches, checked in order: a deck-wide style, an
// artistic per-card hint, and the default clipart icon. Every branch ends with
// the same negative constraint clause so the generator does not draw the word
// itself. Building a prompt is pure and deterministic.
package prompt
