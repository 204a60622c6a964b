// Package preflight provides readiness checks for the directories, binaries
// and remote services subsync depends on.
//
// `subsync check` runs them all and prints a table. Each service check is
// gated by its config toggle; disabled features pass with a "Disabled" note.
package preflight
