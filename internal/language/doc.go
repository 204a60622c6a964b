// Package language normalizes language identifiers found in configuration,
// container stream tags and catalogue responses so they can be compared.
package language
