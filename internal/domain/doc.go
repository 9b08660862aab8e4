// Package domain contains the core entities of the deck generator: the Card
// and the errors raised when a card fails validation. It is independent of any
// transport, storage or image provider.
package domain
