// Package memory provides in-process implementations of the store interfaces.
// Nothing is persisted: a deck lives until it is replaced or the process exits.
package memory
