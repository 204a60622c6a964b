// Package workflow runs one subtitle synchronization end to end.
//
// A run moves through fixed stages: resolve the two subtitle files, parse
// them, drop advertisement cues from the input, find the offset (or take a
// manual one), shift and reindex, then write the result atomically under an
// output lock. Each stage logs start and completion with the run id and
// stage name; failures carry a services marker so the CLI can map them to an
// exit code. Every run, successful or not, is offered to the history ledger.
package workflow
