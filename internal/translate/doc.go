// Package translate provides the text translation capability used to bring
// the lead cue into the reference track's language before scoring.
//
// Providers are an OpenAI-compatible chat model (via services/llm), a
// LibreTranslate server, and an identity translator for same-language
// tracks. Memo caches results for the lifetime of one run.
package translate
