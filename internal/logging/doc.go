// Package logging builds the slog loggers used by the CLI and library code.
//
// Console output is a single human-readable line per record with the
// component hoisted in front of the message; JSON output renames the time
// key to ts. Helpers here keep warning and decision logs uniformly shaped,
// and WithContext tags lines with the run id and stage carried on a context.
package logging
