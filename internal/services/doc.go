// Package services defines shared utilities consumed by the synchronization
// workflow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (missing inputs, empty tracks, catalogue misses, collaborator errors)
//     into consistent CLI exit codes.
//
// Use these helpers when wiring new run logic so operational behaviour stays
// uniform across the resolver, aligner and writer.
package services
