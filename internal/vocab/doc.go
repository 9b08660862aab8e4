// Package vocab turns raw vocabulary text into deck cards.
//
// Each line of input is a candidate card of the form
//
//	term (optional hint): definition
//
// Lines without a delimiter, or lines whose term or definition end up empty,
// are skipped silently. Skipping is normal filtering, not an error.
package vocab
