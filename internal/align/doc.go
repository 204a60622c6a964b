// Package align finds the constant offset that lines an input subtitle track
// up with a reference track, and applies it.
//
// The first input cue (the lead cue) is translated into the reference language
// and scored against every reference cue that ends inside the window. The
// highest score wins, earliest cue first on ties, and is accepted only when
// it strictly exceeds the threshold. Otherwise the offset is zero and the
// result is flagged low confidence: a wrong shift is worse than none.
package align
