// Package config loads the server and CLI settings from CARDGEN_ environment
// variables and an optional YAML file, applies defaults for the retry policy,
// the page grid and the style keywords, and validates the result.
package config
