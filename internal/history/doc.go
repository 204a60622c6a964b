// Package history keeps a SQLite ledger of synchronization runs: the paths
// involved, the chosen offset, the best score and whether the match was
// trusted. `subsync history` reads it back.
package history
